package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	dto "github.com/dropDatabas3/prepmood/internal/http/dto/inquiries"
	"github.com/dropDatabas3/prepmood/internal/util/refreshctl"
)

// inquiryWatcher sondea una consulta por el Admin API y reporta cambios
// de estado o respuestas nuevas. Los fetch corren en goroutines propias;
// el refreshctl descarta resultados de sondeos viejos que llegan tarde y
// evita encimar un tick con otro que todavía está en vuelo.
type inquiryWatcher struct {
	client  *http.Client
	baseURL string
	apiKey  string
	id      int64

	ctl *refreshctl.Controller

	lastStatus  string
	lastReplies int
	seeded      bool
}

func newInquiryWatchCmd() *cobra.Command {
	var (
		id       int64
		interval time.Duration
		baseURL  string
		apiKey   string
	)

	cmd := &cobra.Command{
		Use:   "inquiry:watch",
		Short: "Sigue una consulta en vivo: avisa cambios de estado y respuestas nuevas",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if apiKey == "" {
				apiKey = os.Getenv("ADMIN_API_KEY")
			}
			if apiKey == "" {
				return fmt.Errorf("--api-key (or ADMIN_API_KEY) is required")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w := &inquiryWatcher{
				client:  &http.Client{Timeout: 10 * time.Second},
				baseURL: baseURL,
				apiKey:  apiKey,
				id:      id,
				ctl:     refreshctl.New(),
			}
			return w.run(ctx, interval)
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "inquiry id")
	cmd.Flags().DurationVar(&interval, "interval", 15*time.Second, "poll interval")
	cmd.Flags().StringVar(&baseURL, "base-url", envOr("PREPMOOD_URL", "http://127.0.0.1:8080"), "service base URL")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "admin API key (env ADMIN_API_KEY)")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func (w *inquiryWatcher) run(ctx context.Context, interval time.Duration) error {
	type result struct {
		gen     uint64
		inquiry *dto.InquiryResponse
		err     error
	}
	results := make(chan result, 1)

	poll := func(gen uint64) {
		inq, err := w.fetch(ctx)
		select {
		case results <- result{gen: gen, inquiry: inq, err: err}:
		case <-ctx.Done():
		}
	}

	// Primer fetch inmediato.
	go poll(w.ctl.Begin())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			fmt.Println("\nbye")
			return nil
		case <-ticker.C:
			if gen, ok := w.ctl.TryBegin(); ok {
				go poll(gen)
			}
		case res := <-results:
			if !w.ctl.Commit(res.gen) {
				continue
			}
			if res.err != nil {
				fmt.Printf("%s  poll failed: %v\n", time.Now().Format("15:04:05"), res.err)
				continue
			}
			w.report(res.inquiry)
		}
	}
}

func (w *inquiryWatcher) fetch(ctx context.Context) (*dto.InquiryResponse, error) {
	url := fmt.Sprintf("%s/api/admin/inquiries/%d", w.baseURL, w.id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Admin-API-Key", w.apiKey)

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", url, resp.Status)
	}

	var inq dto.InquiryResponse
	if err := json.Unmarshal(body, &inq); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &inq, nil
}

func (w *inquiryWatcher) report(inq *dto.InquiryResponse) {
	now := time.Now().Format("15:04:05")
	if !w.seeded {
		w.seeded = true
		w.lastStatus = inq.Status
		w.lastReplies = len(inq.Replies)
		fmt.Printf("%s  watching inquiry %d %q from %s  status=%s replies=%d\n",
			now, inq.ID, inq.Subject, inq.Email, inq.Status, len(inq.Replies))
		return
	}

	if inq.Status != w.lastStatus {
		fmt.Printf("%s  status: %s -> %s\n", now, w.lastStatus, inq.Status)
		w.lastStatus = inq.Status
	}
	if n := len(inq.Replies); n > w.lastReplies {
		for _, r := range inq.Replies[w.lastReplies:] {
			fmt.Printf("%s  new reply by admin %d: %s\n", now, r.AdminUserID, r.Body)
		}
		w.lastReplies = n
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
