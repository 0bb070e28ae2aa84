package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/PalashJyoti/mindsight-client/internal/config"
	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("mindsight failed")
	}
}

func run(args []string) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Msgf("Recovered from panic: %v", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	setupLogging(c)

	if len(args) == 0 || args[0] == "help" || args[0] == "-h" {
		displayAppname(c.GetAppName())
		usage()
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(c, os.Stdin, os.Stdout)
	if err != nil {
		return err
	}
	defer a.close()
	return a.dispatch(ctx, args)
}

func setupLogging(c config.EnvConfig) {
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}

func usage() {
	fmt.Print(`Usage: mindsight <command> [arguments]

Account:
  login                          sign in with password and authenticator code
  signup [-qr file.png]          create an account and save the enrolment QR code
  forgot                         reset a password with an authenticator code
  logout                         end the session
  whoami                         show the signed in user

Monitoring:
  cameras list | add <label> <ip> <src> | update <id> [flags] | delete <id> | feed <id>
  users list | delete <id> | role <id> <admin|user>
  logs list | delete <id> | image <id> [-o file] | export [-o file.csv]
  detect <image file>            classify the emotion in one image
  summary                        detections per emotion
`)
}
