package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/Iamabhih/ikhaya-checkout/config"
	"github.com/Iamabhih/ikhaya-checkout/kafka"
	"github.com/Iamabhih/ikhaya-checkout/model"
	"github.com/Iamabhih/ikhaya-checkout/payfast"
	"github.com/Iamabhih/ikhaya-checkout/server"
	"github.com/Iamabhih/ikhaya-checkout/service/order"
	"github.com/Iamabhih/ikhaya-checkout/service/paymentlog"
	"github.com/Iamabhih/ikhaya-checkout/service/pending"
	"github.com/Iamabhih/ikhaya-checkout/service/recovery"
)

const versionTimeFormat = "20060102150405"

func main() {
	rootCmd := &cobra.Command{Use: "ikhaya-checkout"}
	rootCmd.AddCommand(
		createMigrationCommand(),
		migrateCommand(),
		serveCommand(),
		relayCommand(),
		purgePendingCommand(),
		recreateOrderCommand(),
		traceOrderCommand(),
		tailEventsCommand(),
	)

	err := rootCmd.Execute()
	if err != nil {
		panic(err)
	}
}

func createMigrationCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate-create [name]",
		Short: "create sql migrations",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			now := time.Now()
			version := now.Format(versionTimeFormat)
			name := args[0]
			migrationDir := config.Load().CheckoutConfig.MigrationDir
			up := fmt.Sprintf("%s/%s_%s.up.sql", migrationDir, version, name)
			down := fmt.Sprintf("%s/%s_%s.down.sql", migrationDir, version, name)

			err := os.WriteFile(up, []byte{}, 0644)
			if err != nil {
				panic(err)
			}

			err = os.WriteFile(down, []byte{}, 0644)
			if err != nil {
				panic(err)
			}

			fmt.Println("Created SQL up script:", up)
			fmt.Println("Created SQL down script:", down)
		},
	}
}

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate-up",
		Short: "migrate all the way up",
		Run: func(cmd *cobra.Command, args []string) {
			conf := config.Load().CheckoutConfig
			m, err := migrate.New(
				fmt.Sprintf("file://%s", conf.MigrationDir),
				fmt.Sprintf("mysql://%s", conf.DatabaseDSN),
			)
			if err != nil {
				panic(err)
			}

			err = m.Up()
			if err == migrate.ErrNoChange {
				fmt.Println("No change in migration")
				return
			}
			if err != nil {
				panic(err)
			}
			fmt.Println("Migrated up")
		},
	}
}

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "run the checkout and webhook http server",
		Run: func(cmd *cobra.Command, args []string) {
			conf := config.Load()
			db := mustConnect(conf)

			logs := newPaymentLogService(conf, db)
			pendingSvc := pending.NewService(pending.NewRepo(db))
			orderSvc := order.NewService(order.NewRepo(db), pendingSvc)
			gateway := payfast.NewClient(conf.PayFast)

			srv := server.New(conf, gateway, pendingSvc, orderSvc, logs)
			if err := srv.Run(); err != nil {
				panic(err)
			}
		},
	}
}

func relayCommand() *cobra.Command {
	var interval time.Duration
	var batch int
	cmd := &cobra.Command{
		Use:   "relay",
		Short: "sweep the payment event outbox into kafka",
		Run: func(cmd *cobra.Command, args []string) {
			conf := config.Load()
			db := mustConnect(conf)
			logs := newPaymentLogService(conf, db)

			ctx := context.Background()
			for {
				if err := logs.RelayMessage(ctx, batch); err != nil {
					log.Printf("relay: %s", err)
				}
				time.Sleep(interval)
			}
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "sweep interval")
	cmd.Flags().IntVar(&batch, "batch", 100, "max outbox rows per sweep")
	return cmd
}

func purgePendingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "purge-pending",
		Short: "remove pending orders older than one hour",
		Run: func(cmd *cobra.Command, args []string) {
			conf := config.Load()
			db := mustConnect(conf)
			pendingSvc := pending.NewService(pending.NewRepo(db))

			purged, err := pendingSvc.PurgeExpired(context.Background())
			if err != nil {
				panic(err)
			}
			fmt.Println("Purged pending orders:", purged)
		},
	}
}

func recreateOrderCommand() *cobra.Command {
	var tempOrderID string
	var paymentRef string
	var reconstructionFile string
	cmd := &cobra.Command{
		Use:   "recreate-order",
		Short: "manually rebuild an order whose webhook never arrived",
		Run: func(cmd *cobra.Command, args []string) {
			conf := config.Load()
			db := mustConnect(conf)

			logs := newPaymentLogService(conf, db)
			pendingSvc := pending.NewService(pending.NewRepo(db))
			orderSvc := order.NewService(order.NewRepo(db), pendingSvc)
			recoverySvc := recovery.NewService(orderSvc, pendingSvc, logs)

			input := recovery.Input{
				TempOrderID:      tempOrderID,
				PaymentReference: paymentRef,
			}
			if reconstructionFile != "" {
				raw, err := os.ReadFile(reconstructionFile)
				if err != nil {
					panic(err)
				}
				var recon model.PendingOrder
				if err := json.Unmarshal(raw, &recon); err != nil {
					panic(err)
				}
				input.Reconstruction = &recon
			}

			res, err := recoverySvc.RecreateOrder(context.Background(), input)
			if err != nil {
				panic(err)
			}
			fmt.Println("Recreated order:", res.OrderNumber)
		},
	}
	cmd.Flags().StringVar(&tempOrderID, "temp-id", "", "temporary order id (m_payment_id)")
	cmd.Flags().StringVar(&paymentRef, "payment-ref", "", "gateway payment reference (pf_payment_id)")
	cmd.Flags().StringVar(&reconstructionFile, "reconstruction", "", "json file with a rebuilt pending order, for when the pending record was lost")
	return cmd
}

func traceOrderCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "trace-order [order-number]",
		Short: "print the payment audit trail for an order number or temp id",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			conf := config.Load()
			db := mustConnect(conf)
			repo := paymentlog.NewRepo(db)

			entries, err := repo.ListPaymentLogs(context.Background(), args[0])
			if err != nil {
				panic(err)
			}
			for _, entry := range entries {
				line := fmt.Sprintf("%s %s", entry.CreatedAt.Time.Format(time.RFC3339), entry.EventType)
				if len(entry.Payload) > 0 {
					line += " " + string(entry.Payload)
				}
				if entry.ErrorText.Valid {
					line += " error=" + entry.ErrorText.String
				}
				fmt.Println(line)
			}
		},
	}
}

func tailEventsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tail-events",
		Short: "follow the payment audit stream",
		Run: func(cmd *cobra.Command, args []string) {
			conf := config.Load()
			consumer := kafka.NewConsumer(conf.KafkaHost, conf.PaymentEventsTopic)
			for {
				select {
				case msg := <-consumer.Messages():
					fmt.Printf("%s\n", msg.Value)
				case err := <-consumer.Errors():
					log.Printf("tail-events: %s", err)
				}
			}
		},
	}
}

func newPaymentLogService(conf config.Config, db *sqlx.DB) paymentlog.IService {
	producer := kafka.NewProducer(conf.KafkaHost, conf.PaymentEventsTopic)
	return paymentlog.NewService(paymentlog.NewRepo(db), producer)
}

func mustConnect(conf config.Config) *sqlx.DB {
	db, err := sqlx.Connect("mysql", conf.CheckoutConfig.DatabaseDSN)
	if err != nil {
		panic(err)
	}
	return db
}
