package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrygo/agenda/internal/profile"
	"github.com/hrygo/agenda/internal/version"
	"github.com/hrygo/agenda/plugin/ai"
	"github.com/hrygo/agenda/plugin/ai/event"
	"github.com/hrygo/agenda/plugin/ai/ptime"
	"github.com/hrygo/agenda/server"
	"github.com/hrygo/agenda/store"
	"github.com/hrygo/agenda/store/db"
)

var (
	rootCmd = &cobra.Command{
		Use:   "agenda",
		Short: "Turns PT-BR text into calendar events with correct dates and times.",
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Run: func(_ *cobra.Command, _ []string) {
			instanceProfile := loadProfile()
			if err := instanceProfile.Validate(); err != nil {
				slog.Error("invalid profile", slog.String("error", err.Error()))
				os.Exit(1)
			}

			ctx, cancel := context.WithCancel(context.Background())
			dbDriver, err := db.NewDBDriver(instanceProfile)
			if err != nil {
				cancel()
				slog.Error("failed to create db driver", slog.String("error", err.Error()))
				return
			}

			storeInstance := store.New(dbDriver, instanceProfile)
			if err := storeInstance.Migrate(ctx); err != nil {
				cancel()
				slog.Error("failed to migrate", slog.String("error", err.Error()))
				return
			}

			s, err := server.NewServer(ctx, instanceProfile, storeInstance)
			if err != nil {
				cancel()
				slog.Error("failed to create server", slog.String("error", err.Error()))
				return
			}

			c := make(chan os.Signal, 1)
			// Trigger graceful shutdown on SIGINT or SIGTERM.
			signal.Notify(c, os.Interrupt, syscall.SIGTERM)

			if err := s.Start(ctx); err != nil {
				cancel()
				slog.Error("failed to start server", slog.String("error", err.Error()))
				return
			}

			printGreetings(instanceProfile)

			go func() {
				<-c
				s.Shutdown(ctx)
				cancel()
			}()

			<-ctx.Done()
		},
	}

	parseCmd = &cobra.Command{
		Use:   "parse <texto>",
		Short: "Extract one event from text and print it as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			instanceProfile := loadProfile()
			loc, err := instanceProfile.Location()
			if err != nil {
				return err
			}

			extractor, err := event.NewFromConfig(ai.NewConfigFromProfile(instanceProfile), nil, 0)
			if err != nil {
				return err
			}

			req := event.Request{Text: strings.Join(args, " ")}
			if raw := viper.GetString("base-date"); raw != "" {
				base, err := ptime.ParseTimestamp(raw, loc)
				if err != nil {
					return errors.Wrapf(err, "invalid --base-date %q", raw)
				}
				req.BaseDate = base
			}

			result, err := extractor.Parse(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printResult(cmd, result, instanceProfile.TZOffset)
		},
	}
)

type parseOutput struct {
	Event      ptime.Event `json:"event"`
	Signal     string      `json:"signal"`
	Normalized string      `json:"normalized"`
	BaseDate   string      `json:"baseDate"`
}

func printResult(cmd *cobra.Command, result *event.Result, tzOffset string) error {
	out, err := json.MarshalIndent(parseOutput{
		Event:      result.Event,
		Signal:     result.Signal.Kind.String(),
		Normalized: result.Normalized,
		BaseDate:   ptime.Format(result.BaseDate, tzOffset),
	}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

// loadProfile builds the profile from flags and AGENDA_* variables.
func loadProfile() *profile.Profile {
	p := &profile.Profile{
		Mode:        viper.GetString("mode"),
		Addr:        viper.GetString("addr"),
		Port:        viper.GetInt("port"),
		Data:        viper.GetString("data"),
		Driver:      viper.GetString("driver"),
		DSN:         viper.GetString("dsn"),
		InstanceURL: viper.GetString("instance-url"),
		Timezone:    viper.GetString("timezone"),
		LLMProvider: viper.GetString("llm-provider"),
		LLMModel:    viper.GetString("llm-model"),
		Version:     version.GetCurrentVersion(viper.GetString("mode")),
	}
	p.FromEnv()
	return p
}

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("driver", "sqlite")
	viper.SetDefault("port", 8081)

	flags := rootCmd.PersistentFlags()
	flags.String("mode", "dev", `mode of server, can be "prod" or "dev" or "demo"`)
	flags.String("addr", "", "address of server")
	flags.Int("port", 8081, "port of server")
	flags.String("data", "", "data directory")
	flags.String("driver", "sqlite", "database driver (sqlite or postgres)")
	flags.String("dsn", "", "database source name (aka. DSN)")
	flags.String("instance-url", "", "the url of your agenda instance")
	flags.String("timezone", "", "IANA timezone of resolved events")
	flags.String("llm-provider", "", "LLM provider (ollama, openai, deepseek)")
	flags.String("llm-model", "", "LLM model name")
	for _, name := range []string{"mode", "addr", "port", "data", "driver", "dsn", "instance-url", "timezone", "llm-provider", "llm-model"} {
		if err := viper.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}

	parseCmd.Flags().String("base-date", "", `reference instant, e.g. "2025-06-11T10:00:00-03:00" (default now)`)
	if err := viper.BindPFlag("base-date", parseCmd.Flags().Lookup("base-date")); err != nil {
		panic(err)
	}

	viper.SetEnvPrefix("agenda")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	rootCmd.AddCommand(serveCmd, parseCmd)
}

func printGreetings(p *profile.Profile) {
	fmt.Printf("agenda %s started successfully!\n", p.Version)
	fmt.Printf("Data directory: %s\n", p.Data)
	fmt.Printf("Database driver: %s\n", p.Driver)
	fmt.Printf("Timezone: %s (%s)\n", p.Timezone, p.TZOffset)
	fmt.Printf("LLM: %s/%s\n", p.LLMProvider, p.LLMModel)
	if p.IsCalDAVEnabled() {
		fmt.Printf("CalDAV: %s%s\n", p.CalDAVURL, p.CalDAVPath)
	}
	if len(p.Addr) == 0 {
		fmt.Printf("Server running on port %d\n", p.Port)
		fmt.Printf("Accessing agenda at http://localhost:%d\n", p.Port)
	} else {
		fmt.Printf("Server running at %s:%d\n", p.Addr, p.Port)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
