package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/PalashJyoti/mindsight-client/apiclient"
	clienterrors "github.com/PalashJyoti/mindsight-client/internal/errors"
	"github.com/PalashJyoti/mindsight-client/users"
	"github.com/pkg/errors"
)

func subcommand(args []string) (string, []string) {
	if len(args) == 0 {
		return "list", nil
	}
	return args[0], args[1:]
}

func parseID(args []string) (int, error) {
	if len(args) == 0 {
		return 0, errors.Wrap(clienterrors.ErrMissingField, "id")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil || id <= 0 {
		return 0, errors.Wrapf(clienterrors.ErrInvalidID, "%q", args[0])
	}
	return id, nil
}

func (a *app) table() *tabwriter.Writer {
	return tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
}

func (a *app) cameras(ctx context.Context, args []string) error {
	sub, rest := subcommand(args)
	svc := a.client.Cameras()

	switch sub {
	case "list":
		var cameras []apiclient.Camera
		req := apiclient.Request{Method: http.MethodGet, Path: apiclient.RouteCameras}
		if err := a.report(a.client.DoWithRetry(ctx, req, &cameras, a.cfg.GetMaxRetries())); err != nil {
			return err
		}
		w := a.table()
		fmt.Fprintln(w, "ID\tLABEL\tIP\tSOURCE\tSTATUS")
		for _, c := range cameras {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", c.ID, c.Label, c.IP, c.Src, c.Status)
		}
		return w.Flush()

	case "feed":
		id, err := parseID(rest)
		if err != nil {
			return err
		}
		a.printf("%s\n", svc.FeedURL(id))
		return nil
	}

	if err := a.requireAdmin(); err != nil {
		return err
	}

	switch sub {
	case "add":
		if len(rest) != 3 {
			return errors.Wrap(clienterrors.ErrMissingField, "usage: cameras add <label> <ip> <src>")
		}
		c, err := svc.Add(ctx, rest[0], rest[1], rest[2])
		if err := a.report(err); err != nil {
			return err
		}
		a.printf("Added camera %d (%s)\n", c.ID, c.Label)
		return nil

	case "update":
		id, err := parseID(rest)
		if err != nil {
			return err
		}
		fs := flag.NewFlagSet("cameras update", flag.ContinueOnError)
		label := fs.String("label", "", "new label")
		ip := fs.String("ip", "", "new IP address")
		src := fs.String("src", "", "new video source")
		status := fs.String("status", "", "Active or Inactive")
		if err := fs.Parse(rest[1:]); err != nil {
			return err
		}

		var update apiclient.CameraUpdate
		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "label":
				update.Label = label
			case "ip":
				update.IP = ip
			case "src":
				update.Src = src
			case "status":
				s := apiclient.CameraStatus(*status)
				update.Status = &s
			}
		})
		c, err := svc.Update(ctx, id, update)
		if err := a.report(err); err != nil {
			return err
		}
		a.printf("Camera %d is now %s (%s)\n", c.ID, c.Label, c.Status)
		return nil

	case "delete":
		id, err := parseID(rest)
		if err != nil {
			return err
		}
		if err := a.report(svc.Delete(ctx, id)); err != nil {
			return err
		}
		a.printf("Deleted camera %d\n", id)
		return nil
	}
	return errors.Wrapf(clienterrors.ErrUnsupported, "cameras %s", sub)
}

func (a *app) users(ctx context.Context, args []string) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}
	sub, rest := subcommand(args)
	svc := a.client.Users()

	switch sub {
	case "list":
		list, err := svc.List(ctx)
		if err := a.report(err); err != nil {
			return err
		}
		w := a.table()
		fmt.Fprintln(w, "ID\tNAME\tUSERNAME\tROLE\tLAST LOGIN")
		for _, u := range list {
			last := "never"
			if at := u.LastLoginAt(); !at.IsZero() {
				last = at.Local().Format("2006-01-02 15:04")
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Username, u.Role, last)
		}
		return w.Flush()

	case "delete":
		id, err := parseID(rest)
		if err != nil {
			return err
		}
		if err := a.report(svc.Delete(ctx, id)); err != nil {
			return err
		}
		a.printf("Deleted user %d\n", id)
		return nil

	case "role":
		id, err := parseID(rest)
		if err != nil {
			return err
		}
		if len(rest) < 2 {
			return errors.Wrap(clienterrors.ErrMissingField, "role")
		}
		u, err := svc.ChangeRole(ctx, id, users.RoleType(strings.ToLower(rest[1])))
		if clienterrors.Is(err, clienterrors.ErrOwnRole) {
			a.printf("You cannot change your own role\n")
			return err
		}
		if err := a.report(err); err != nil {
			return err
		}
		a.printf("%s is now %s\n", u.Username, u.Role)
		return nil
	}
	return errors.Wrapf(clienterrors.ErrUnsupported, "users %s", sub)
}

func (a *app) logs(ctx context.Context, args []string) error {
	sub, rest := subcommand(args)
	svc := a.client.Logs()

	switch sub {
	case "list":
		logs, err := svc.List(ctx)
		if err := a.report(err); err != nil {
			return err
		}
		w := a.table()
		fmt.Fprintln(w, "ID\tTIME\tCAMERA\tEMOTION\tCONFIDENCE")
		for _, l := range logs {
			confidence := "-"
			if l.Confidence != nil {
				confidence = apiclient.FormatConfidence(*l.Confidence)
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", l.ID, l.Timestamp.Local().Format("2006-01-02 15:04:05"), l.CameraLabel, l.Emotion, confidence)
		}
		return w.Flush()

	case "delete":
		id, err := parseID(rest)
		if err != nil {
			return err
		}
		if err := a.report(svc.Delete(ctx, id)); err != nil {
			return err
		}
		a.printf("Deleted log %d\n", id)
		return nil

	case "image":
		id, err := parseID(rest)
		if err != nil {
			return err
		}
		fs := flag.NewFlagSet("logs image", flag.ContinueOnError)
		out := fs.String("o", "", "output file (default detection-<id> with the image extension)")
		if err := fs.Parse(rest[1:]); err != nil {
			return err
		}
		data, contentType, err := svc.Image(ctx, id)
		if err := a.report(err); err != nil {
			return err
		}
		path := *out
		if path == "" {
			path = fmt.Sprintf("detection-%d%s", id, imageExtension(contentType))
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return errors.Wrap(err, "[logs image] save")
		}
		a.printf("Saved %s\n", path)
		return nil

	case "export":
		fs := flag.NewFlagSet("logs export", flag.ContinueOnError)
		out := fs.String("o", "", "CSV file (default stdout)")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		logs, err := svc.List(ctx)
		if err := a.report(err); err != nil {
			return err
		}

		var w io.Writer = a.out
		if *out != "" {
			f, err := os.Create(*out)
			if err != nil {
				return errors.Wrap(err, "[logs export] create")
			}
			defer f.Close()
			w = f
		}
		return apiclient.ExportCSV(w, logs)
	}
	return errors.Wrapf(clienterrors.ErrUnsupported, "logs %s", sub)
}

func imageExtension(contentType string) string {
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".jpg"
}

func (a *app) detect(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.Wrap(clienterrors.ErrMissingField, "usage: detect <image file>")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return errors.Wrap(err, "[detect] read image")
	}
	contentType := mime.TypeByExtension(filepath.Ext(args[0]))

	d, err := a.client.Analytics().Detect(ctx, apiclient.ImageDataURL(contentType, data))
	if err := a.report(err); err != nil {
		return err
	}
	if d == nil {
		a.printf("No face detected\n")
		return nil
	}
	a.printf("%s (%s)\n", d.Label, apiclient.FormatConfidence(d.Confidence))
	return nil
}

func (a *app) summary(ctx context.Context) error {
	summary, err := a.client.Analytics().Summary(ctx)
	if err := a.report(err); err != nil {
		return err
	}
	w := a.table()
	fmt.Fprintln(w, "EMOTION\tCOUNT")
	for _, s := range summary {
		fmt.Fprintf(w, "%s\t%d\n", s.Emotion, s.Count)
	}
	return w.Flush()
}
