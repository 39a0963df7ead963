package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/polkiloo/routeshop/internal/domain/model"
	pkgAuth "github.com/polkiloo/routeshop/internal/pkg/auth"
	"github.com/polkiloo/routeshop/internal/server/http/dto"
)

const settleConcurrency = 4

type globalFlags struct {
	addr    string
	token   string
	timeout time.Duration
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:           "shopctl",
		Short:         "Operator console for the routeshop API",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flags.addr, "addr", envOr("SHOPCTL_ADDR", "http://localhost:8080"), "routeshop base URL")
	root.PersistentFlags().StringVar(&flags.token, "token", os.Getenv("SHOPCTL_TOKEN"), "operator bearer token")
	root.PersistentFlags().DurationVar(&flags.timeout, "timeout", 10*time.Second, "request timeout")

	root.AddCommand(tokenCmd())
	root.AddCommand(statsCmd(flags))
	root.AddCommand(cancelPendingCmd(flags))
	root.AddCommand(payoutsCmd(flags))
	root.AddCommand(settleCmd(flags))

	return root
}

func tokenCmd() *cobra.Command {
	var (
		actor  int64
		scope  string
		secret string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign an actor token with the shared auth secret",
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return fmt.Errorf("auth secret is required (--secret or AUTH_SECRET)")
			}
			if actor == 0 {
				return fmt.Errorf("--actor is required")
			}
			strategy := pkgAuth.NewHMACStrategy(secret, pkgAuth.Options{TTL: ttl})
			token, err := strategy.IssueToken(pkgAuth.Claims{ActorID: actor, Scope: pkgAuth.Scope(scope)})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().Int64Var(&actor, "actor", 0, "chat id of the actor")
	cmd.Flags().StringVar(&scope, "scope", string(pkgAuth.ScopeOperator), "buyer or operator")
	cmd.Flags().StringVar(&secret, "secret", os.Getenv("AUTH_SECRET"), "token signing secret")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}

func statsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show order counts and sums per status",
		RunE: func(cmd *cobra.Command, args []string) error {
			var stats dto.StatsResponse
			if err := newClient(flags).do(cmd.Context(), http.MethodGet, "/api/operator/stats", &stats); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "total: %d\n", stats.Total)
			for _, status := range []model.OrderStatus{
				model.OrderStatusPending,
				model.OrderStatusSuccess,
				model.OrderStatusRejected,
				model.OrderStatusCancelled,
				model.OrderStatusExpired,
			} {
				s := stats.ByStatus[string(status)]
				fmt.Fprintf(out, "%-10s %5d  %s\n", status, s.Count, model.FormatAmount(s.Sum))
			}
			fmt.Fprintf(out, "revenue: %s\n", model.FormatAmount(stats.Revenue))
			return nil
		},
	}
}

func cancelPendingCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel-pending",
		Short: "Cancel every pending order",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.CancelResponse
			if err := newClient(flags).do(cmd.Context(), http.MethodPost, "/api/operator/orders/cancel-pending", &resp); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cancelled %d orders\n", resp.Cancelled)
			return nil
		},
	}
}

func payoutsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "payouts",
		Short: "List instructor balances",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.PayoutsResponse
			if err := newClient(flags).do(cmd.Context(), http.MethodGet, "/api/operator/payouts", &resp); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, in := range resp.Instructors {
				mark := ""
				if in.Ready {
					mark = " *"
				}
				fmt.Fprintf(out, "%s @%s card *%s %s%s\n", in.Code, in.Contact, in.CardLast4, model.FormatAmount(in.Balance), mark)
			}
			fmt.Fprintf(out, "total: %s (threshold %s)\n", model.FormatAmount(resp.Total), model.FormatAmount(resp.Threshold))
			return nil
		},
	}
}

func settleCmd(flags *globalFlags) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "settle [code...]",
		Short: "Zero instructor balances after paying them out",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient(flags)
			codes := args
			if all {
				var resp dto.PayoutsResponse
				if err := c.do(cmd.Context(), http.MethodGet, "/api/operator/payouts", &resp); err != nil {
					return err
				}
				codes = codes[:0:0]
				for _, in := range resp.Instructors {
					if in.Ready {
						codes = append(codes, in.Code)
					}
				}
			}
			if len(codes) == 0 {
				return fmt.Errorf("nothing to settle")
			}

			var (
				mu      sync.Mutex
				settled []dto.SettleResponse
			)
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(settleConcurrency)
			for _, code := range codes {
				g.Go(func() error {
					var resp dto.SettleResponse
					if err := c.do(ctx, http.MethodPost, "/api/operator/payouts/"+code+"/settle", &resp); err != nil {
						return fmt.Errorf("settle %s: %w", code, err)
					}
					mu.Lock()
					settled = append(settled, resp)
					mu.Unlock()
					return nil
				})
			}
			err := g.Wait()

			for _, s := range settled {
				fmt.Fprintf(cmd.OutOrStdout(), "%s settled %s\n", s.Code, model.FormatAmount(s.Settled))
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&all, "all-ready", false, "settle every instructor above the payout threshold")
	return cmd
}

type client struct {
	addr  string
	token string
	http  *http.Client
}

func newClient(flags *globalFlags) *client {
	return &client{addr: flags.addr, token: flags.token, http: &http.Client{Timeout: flags.timeout}}
}

func (c *client) do(ctx context.Context, method, path string, out any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	req, err := http.NewRequestWithContext(ctx, method, c.addr+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr dto.ErrorResponse
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s: %s", resp.Status, apiErr.Error)
		}
		return fmt.Errorf("%s", resp.Status)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
