// Command revopt is a terminal client for the hotel revenue optimization
// backend: it runs streaming optimize sessions, chats with the assistant,
// and browses past runs.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	revopt "github.com/hotelkit/revopt-go/sdk"
)

var (
	flagBaseURL  string
	flagToken    string
	flagProvider string
	flagVerbose  bool

	stageStyle   = lipgloss.NewStyle().Bold(true)
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	activeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:          "revopt",
		Short:        "Client for the hotel revenue optimization backend",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if flagVerbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	root.PersistentFlags().StringVar(&flagBaseURL, "base-url", os.Getenv("REVOPT_BASE_URL"), "backend base URL")
	root.PersistentFlags().StringVar(&flagToken, "token", os.Getenv("REVOPT_TOKEN"), "bearer session token")
	root.PersistentFlags().StringVar(&flagProvider, "provider", "anthropic", "LLM provider (anthropic|gemini)")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")

	root.AddCommand(newOptimizeCmd(), newChatCmd(), newHistoryCmd(), newMessagesCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newSDKClient(extra ...revopt.ClientOption) (*revopt.Client, error) {
	if flagBaseURL == "" {
		return nil, fmt.Errorf("backend base URL required (--base-url or REVOPT_BASE_URL)")
	}
	opts := []revopt.ClientOption{revopt.WithLogger(slog.Default())}
	if flagToken != "" {
		opts = append(opts, revopt.WithToken(flagToken))
	}
	opts = append(opts, extra...)
	return revopt.NewClient(flagBaseURL, opts...), nil
}

func provider() revopt.Provider {
	if p := revopt.Provider(flagProvider); p.IsValid() {
		return p
	}
	return revopt.ProviderAnthropic
}

func newOptimizeCmd() *cobra.Command {
	var req revopt.OptimizeRequest
	var pacing time.Duration

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Run the multi-agent optimization pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newSDKClient(revopt.WithNodePacing(pacing))
			if err != nil {
				return err
			}
			req.Provider = provider()
			return runOptimize(cmd.Context(), client, req)
		},
	}

	cmd.Flags().StringVar(&req.HotelName, "hotel", "", "hotel name")
	cmd.Flags().StringVar(&req.HotelLocation, "location", "", "hotel location")
	cmd.Flags().StringVar(&req.CurrentADR, "adr", "", "current average daily rate")
	cmd.Flags().StringVar(&req.HistoricalOccupancy, "occupancy", "", "historical occupancy, e.g. 75%")
	cmd.Flags().StringVar(&req.TargetRevPAR, "revpar", "", "target RevPAR")
	cmd.Flags().StringVar(&req.AdditionalContext, "context", "", "extra context for the analysts")
	cmd.Flags().DurationVar(&pacing, "pacing", 400*time.Millisecond, "delay between stage transitions (0 disables)")
	return cmd
}

func runOptimize(ctx context.Context, client *revopt.Client, req revopt.OptimizeRequest) error {
	pc := client.Optimize.NewController()
	defer pc.Close()

	updates, unsubscribe := pc.Subscribe()
	defer unsubscribe()

	done := pc.Start(ctx, req)

	lastStatus := map[revopt.NodeName]revopt.NodeStatus{}
	for {
		select {
		case s := <-updates:
			for _, node := range s.Nodes {
				if lastStatus[node.ID] == node.Status {
					continue
				}
				lastStatus[node.ID] = node.Status
				printStage(node)
			}
		case <-done:
			return printOutcome(pc.State())
		case <-ctx.Done():
			pc.Cancel()
			return ctx.Err()
		}
	}
}

func printStage(node revopt.NodeRecord) {
	var status string
	switch node.Status {
	case revopt.StatusActive:
		status = activeStyle.Render("running")
	case revopt.StatusDone:
		status = doneStyle.Render("done")
	case revopt.StatusError:
		status = errorStyle.Render("failed")
	default:
		return
	}
	fmt.Printf("%s %s (%s)\n", stageStyle.Render(node.Label), status, pendingStyle.Render(node.Model))
}

func printOutcome(s revopt.PipelineState) error {
	switch s.Phase {
	case revopt.PhaseError:
		return fmt.Errorf("optimization failed: %s", s.Err)
	case revopt.PhaseComplete:
	default:
		return fmt.Errorf("stream ended before a result arrived")
	}

	return renderResult(s.Result)
}

func printRecord(record *revopt.HistoryRecord) error {
	fmt.Printf("#%d  %s\n", record.ID, record.CreatedAt.Format(time.DateTime))
	return renderResult(&record.OptimizeResult)
}

func renderResult(result *revopt.OptimizeResult) error {
	if result.QueryType != revopt.QueryValid {
		fmt.Printf("\n%s: %s\n", result.QueryType, result.ErrorMessage)
		return nil
	}

	sections := []struct {
		title string
		body  string
	}{
		{"Market Analysis", result.MarketAnalysis},
		{"Demand Forecast", result.DemandForecast},
		{"Pricing Strategy", result.PricingStrategy},
		{"Revenue Plan", result.RevenuePlan},
	}

	var doc strings.Builder
	fmt.Fprintf(&doc, "# %s — %s\n\n", result.HotelName, result.HotelLocation)
	for _, section := range sections {
		if section.body == "" {
			continue
		}
		fmt.Fprintf(&doc, "## %s\n\n%s\n\n", section.title, section.body)
	}

	rendered, err := glamour.Render(doc.String(), "dark")
	if err != nil {
		fmt.Println(doc.String())
		return nil
	}
	fmt.Println(rendered)
	return nil
}

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat <message>",
		Short: "Ask the revenue assistant a question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newSDKClient()
			if err != nil {
				return err
			}

			stream, err := client.Chat.Stream(cmd.Context(), &revopt.ChatRequest{
				Message: strings.Join(args, " "),
			})
			if err != nil {
				return err
			}
			defer stream.Close()

			for fragment := range stream.Events() {
				fmt.Print(fragment)
			}
			fmt.Println()
			return stream.Err()
		},
	}
}

func newHistoryCmd() *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "history [id]",
		Short: "List past optimization runs, or show one by id",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newSDKClient()
			if err != nil {
				return err
			}

			if len(args) == 1 {
				id, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("record id must be a number: %q", args[0])
				}
				record, err := client.History.Get(cmd.Context(), id)
				if err != nil {
					return err
				}
				return printRecord(record)
			}

			page, err := client.History.List(cmd.Context(), limit, offset)
			if err != nil {
				return err
			}
			if len(page.Items) == 0 {
				fmt.Println("no runs recorded")
				return nil
			}
			for _, record := range page.Items {
				fmt.Printf("%s  %s  %s (%s, %s)\n",
					record.CreatedAt.Format(time.DateTime),
					stageStyle.Render(record.HotelName),
					record.HotelLocation,
					record.QueryType,
					record.Provider,
				)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "records per page")
	cmd.Flags().IntVar(&offset, "offset", 0, "pagination offset")
	return cmd
}

func newMessagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "messages",
		Short: "Show the stored chat conversation",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newSDKClient()
			if err != nil {
				return err
			}

			msgs, err := client.Chat.Messages(cmd.Context())
			if err != nil {
				return err
			}
			for _, msg := range msgs {
				fmt.Printf("%s: %s\n", stageStyle.Render(msg.Role), msg.Content)
			}
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete the stored chat conversation",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newSDKClient()
			if err != nil {
				return err
			}
			return client.Chat.ClearMessages(cmd.Context())
		},
	})
	return cmd
}
