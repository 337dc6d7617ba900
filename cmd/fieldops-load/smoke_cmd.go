package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type smokeOptions struct {
	BaseURL string
	SID     string
}

// smokePaths are the cheapest authenticated reads that prove the
// console is serving and the upstream is reachable.
var smokePaths = []string{
	"/farmers?page=1",
	"/fieldlogs?page=1",
}

func newSmokeCmd() *cobra.Command {
	var opts smokeOptions

	cmd := &cobra.Command{
		Use:   "smoke --base-url <url> --sid <cookie>",
		Short: "Run a small smoke check against /health and the main registers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(opts.BaseURL) == "" {
				return errors.New("--base-url is required")
			}
			if strings.TrimSpace(opts.SID) == "" {
				return errors.New("--sid is required")
			}

			client := newHTTPClient()
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			if err := healthCheck(ctx, client, opts.BaseURL); err != nil {
				return err
			}

			base := strings.TrimRight(opts.BaseURL, "/")
			for _, path := range smokePaths {
				if err := smokeGet(ctx, client, base+path, opts.SID); err != nil {
					return fmt.Errorf("smoke %s: %w", path, err)
				}
				cmd.Printf("ok %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.BaseURL, "base-url", "http://localhost:3200", "console base URL")
	cmd.Flags().StringVar(&opts.SID, "sid", "", "session cookie value (sid)")

	return cmd
}

func smokeGet(ctx context.Context, client *http.Client, url, sid string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("status=%d", resp.StatusCode)
	}
	return nil
}
