// Package main реализует консольный клиент gestior для работы с заказами, товарами и клиентами.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/mmeshcher/gestior/internal/api"
	"github.com/mmeshcher/gestior/internal/config"
	"github.com/mmeshcher/gestior/internal/repository"
	"github.com/mmeshcher/gestior/internal/session"
)

const usage = `usage: gestior [flags] <command> [args]

commands:
  register <name> <email> <password> [business]
  login <email> <password>
  logout
  whoami
  products [-search s] [-category c] [-all]
  stock <product-id> <quantity> [reason]
  clients [-search s]
  payment-methods
  orders [-status s] [-from date] [-to date] [-all]
  order show <id>
  order create [-finalize] [-discount n] [-client id] [-pay kind] [-notes s] <product-id[:qty[:price]]>...
  order update <id> [-discount n] [-client id] [-pay kind] [-notes s] [<product-id[:qty[:price]]>...]
  order finalize <id> [payment-method-id]
  order cancel <id> [reason]
  order delete <id>
`

// errUsage выводит справку и завершает работу с кодом 2.
var errUsage = errors.New("invalid usage")

type app struct {
	cfg    *config.Client
	out    io.Writer
	logger *zap.Logger
	store  session.Store

	auth     *repository.AuthRepository
	products *repository.ProductRepository
	clients  *repository.ClientRepository
	methods  *repository.PaymentMethodRepository
	orders   *repository.OrderRepository
}

func main() {
	cfg, args, err := config.ParseClient(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	store, err := session.OpenFileStore(cfg.SessionFile)
	if err != nil {
		logger.Fatal("open session", zap.String("path", cfg.SessionFile), zap.Error(err))
	}

	a := newApp(cfg, store, os.Stdout, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.run(ctx, args); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

func newApp(cfg *config.Client, store session.Store, out io.Writer, logger *zap.Logger) *app {
	client := api.NewClient(cfg.BaseURL, store, api.Options{
		Timeout:    cfg.Timeout,
		Logger:     logger,
		DeviceName: cfg.DeviceName,
	})

	return &app{
		cfg:      cfg,
		out:      out,
		logger:   logger,
		store:    store,
		auth:     repository.NewAuthRepository(client, store, logger),
		products: repository.NewProductRepository(client),
		clients:  repository.NewClientRepository(client),
		methods:  repository.NewPaymentMethodRepository(client),
		orders:   repository.NewOrderRepository(client, logger),
	}
}

func (a *app) strategy() repository.SubmitStrategy {
	if a.cfg.SubmitPerItem {
		return repository.SubmitPerItem
	}
	return repository.SubmitBulk
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "register", "login":
		return a.authCommand(ctx, cmd, rest)
	case "help":
		fmt.Fprint(a.out, usage)
		return nil
	}

	if session.InitialRoute(a.store) == session.RouteLogin {
		return errors.New("not logged in, run `gestior login` first")
	}

	switch cmd {
	case "logout":
		return a.logout(ctx)
	case "whoami":
		return a.whoami(ctx)
	case "products":
		return a.listProducts(ctx, rest)
	case "stock":
		return a.updateStock(ctx, rest)
	case "clients":
		return a.listClients(ctx, rest)
	case "payment-methods":
		return a.listPaymentMethods(ctx)
	case "orders":
		return a.listOrders(ctx, rest)
	case "order":
		return a.orderCommand(ctx, rest)
	default:
		return errUsage
	}
}
