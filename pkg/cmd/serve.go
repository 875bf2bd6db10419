package cmd

import (
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/c9s/ordmap/pkg/rbtree"
	"github.com/c9s/ordmap/pkg/server"
	"github.com/c9s/ordmap/pkg/util"
)

func init() {
	ServeCmd.Flags().String("bind", ":8080", "bind address of the http server")
	ServeCmd.Flags().String("snapshot", "", "snapshot file loaded on start and written on shutdown")
	ServeCmd.Flags().String("snapshot-schedule", "", "cron spec for saving the snapshot while serving, like @every 5m")
	ServeCmd.Flags().String("rate-limit", "", "requests per second or burst+n/duration, like 20+10/1s; empty disables the limiter")
	ServeCmd.Flags().Int("burst", 0, "burst size of the rate limiter, overrides the burst of --rate-limit")
	ServeCmd.Flags().StringSlice("allow-origins", []string{"*"}, "allowed CORS origins")
	ServeCmd.Flags().Duration("shutdown-timeout", 10*time.Second, "graceful shutdown timeout")
	RootCmd.AddCommand(ServeCmd)
}

var ServeCmd = &cobra.Command{
	Use:          "serve",
	Short:        "serve the tree over http",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		rateLimit, burst, err := util.ParseRateLimit(viper.GetString("rate-limit"))
		if err != nil {
			return err
		}

		if b := viper.GetInt("burst"); b > 0 {
			burst = b
		}

		config := server.Config{
			Bind:             viper.GetString("bind"),
			SnapshotPath:     viper.GetString("snapshot"),
			SnapshotSchedule: viper.GetString("snapshot-schedule"),
			RateLimit:        rateLimit,
			Burst:            burst,
			AllowOrigins:     viper.GetStringSlice("allow-origins"),
			ShutdownTimeout:  viper.GetDuration("shutdown-timeout"),
		}

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		srv := server.New(config, rbtree.NewSync[int64, string]())

		go server.PingUntil(ctx, baseURL(srv.Config.Bind), 10*time.Second, func() {
			log.Infof("ordmap server is ready at %s", srv.Config.Bind)
		})

		return srv.Run(ctx)
	},
}

// baseURL turns a listen address like ":8080" into a dialable URL.
func baseURL(bind string) string {
	host, port, err := net.SplitHostPort(bind)
	if err != nil {
		return "http://" + bind
	}

	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}

	return "http://" + net.JoinHostPort(host, port)
}
