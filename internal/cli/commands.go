// Package cli comandos de operación (posctl) sobre los mismos casos de uso que la API.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jhoicas/ventas-pos/internal/application/auth"
	"github.com/jhoicas/ventas-pos/internal/application/dto"
	appsales "github.com/jhoicas/ventas-pos/internal/application/sales"
	"github.com/jhoicas/ventas-pos/internal/bootstrap"
	"github.com/jhoicas/ventas-pos/internal/domain/entity"
	infraredis "github.com/jhoicas/ventas-pos/internal/infrastructure/redis"
	"github.com/jhoicas/ventas-pos/internal/seed"
	"github.com/jhoicas/ventas-pos/pkg/config"
	"github.com/jhoicas/ventas-pos/pkg/logger"
)

// Opener abre el almacenamiento; los tests inyectan uno en memoria.
type Opener func(ctx context.Context, cfg *config.Config, log *logger.Logger) (*bootstrap.Stores, error)

// Execute corre posctl con el almacenamiento configurado.
func Execute() error {
	return NewRootCommand(bootstrap.Open).Execute()
}

type session struct {
	v       *viper.Viper
	open    Opener
	cfg     *config.Config
	log     *logger.Logger
	stores  *bootstrap.Stores
	locker  appsales.SaleLocker
	closers []func()
}

// flags persistentes -> claves de configuración
var boundFlags = []struct{ flag, key, usage string }{
	{"store", "STORE_DRIVER", "almacenamiento: postgres|sqlite|memory"},
	{"sqlite-path", "SQLITE_PATH", "ruta de la base SQLite"},
	{"database-url", "DATABASE_URL", "DSN de PostgreSQL"},
	{"redis-addr", "REDIS_ADDR", "Redis para el bloqueo de ventas (opcional)"},
	{"log-level", "LOG_LEVEL", "trace|debug|info|warn|error"},
}

// NewRootCommand arma el árbol de comandos.
func NewRootCommand(open Opener) *cobra.Command {
	s := &session{v: viper.New(), open: open}

	root := &cobra.Command{
		Use:           "posctl",
		Short:         "Operación del punto de venta",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return s.connect(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			s.shutdown()
		},
	}

	root.PersistentFlags().String("config", "", "archivo de configuración (.env)")
	_ = s.v.BindPFlag("config", root.PersistentFlags().Lookup("config"))
	for _, f := range boundFlags {
		root.PersistentFlags().String(f.flag, "", f.usage)
		_ = s.v.BindPFlag(f.key, root.PersistentFlags().Lookup(f.flag))
	}
	s.v.AutomaticEnv()

	root.AddCommand(
		s.migrateCmd(),
		s.seedCmd(),
		s.salesCmd(),
		s.stockCmd(),
	)
	return root
}

func (s *session) connect(cmd *cobra.Command) error {
	if path := s.v.GetString("config"); path != "" {
		s.v.SetConfigFile(path)
		s.v.SetConfigType("env")
		if err := s.v.ReadInConfig(); err != nil {
			return fmt.Errorf("leer %s: %w", path, err)
		}
	}
	cfg, err := config.FromViper(s.v)
	if err != nil {
		return err
	}
	s.cfg = cfg
	s.log = logger.New(logger.Config{Env: "development", Level: cfg.App.LogLevel, Output: cmd.ErrOrStderr()})

	ctx := cmd.Context()
	stores, err := s.open(ctx, cfg, s.log)
	if err != nil {
		return err
	}
	s.stores = stores
	s.closers = append(s.closers, stores.Close)

	s.locker = appsales.NewLocalLocker()
	if cfg.Redis.Enabled() {
		client, err := infraredis.NewClient(ctx, cfg.Redis, s.log)
		if err != nil {
			return err
		}
		s.closers = append(s.closers, func() { _ = client.Close() })
		s.locker = infraredis.NewSaleLocker(client, cfg.Redis.SaleLockTTL, s.log)
	}
	return nil
}

func (s *session) shutdown() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

func (s *session) coordinator() *appsales.Coordinator {
	return appsales.NewCoordinator(
		s.stores.Tx, s.stores.Sales, s.stores.Employees, s.stores.Customers, s.locker, s.log,
		appsales.Config{
			CommissionCategory:   s.cfg.Sales.CommissionCategory,
			DefaultPaymentMethod: s.cfg.Sales.DefaultPaymentMethod,
		},
	)
}

func (s *session) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica el esquema del almacenamiento",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			applied, err := s.stores.Migrate(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(applied) == 0 {
				fmt.Fprintf(out, "sin migraciones para %s\n", s.stores.Driver)
				return nil
			}
			for _, name := range applied {
				fmt.Fprintf(out, "aplicada: %s\n", name)
			}
			return nil
		},
	}
}

func (s *session) seedCmd() *cobra.Command {
	var file, encoding string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Carga vendedores, clientes, productos, servicios y operadores desde JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := seed.LoadFile(file, encoding)
			if err != nil {
				return err
			}
			authUC := auth.NewAuthUseCase(s.stores.Users, s.stores.Employees, auth.JWTConfig{
				Secret:     s.cfg.JWT.Secret,
				ExpMinutes: s.cfg.JWT.Expiration,
				Issuer:     s.cfg.JWT.Issuer,
			})
			res, err := seed.Apply(cmd.Context(), f, seed.Targets{
				Employees: s.stores.Employees,
				Customers: s.stores.Customers,
				Products:  s.stores.Products,
				Services:  s.stores.Services,
				Users:     authUC,
			}, s.log)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "creados: %d, omitidos: %d\n", res.Created, res.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "archivo JSON del catálogo")
	cmd.Flags().StringVar(&encoding, "encoding", seed.EncodingUTF8, "utf-8 | iso-8859-1")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func (s *session) salesCmd() *cobra.Command {
	sales := &cobra.Command{Use: "sales", Short: "Consulta y anulación de ventas"}

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Muestra una venta con sus líneas",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			detail, err := s.coordinator().GetSale(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), appsales.ToSaleResponse(detail.Sale, detail.Items))
		},
	}

	var list dto.SaleListRequest
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Lista ventas por estado y rango de fechas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, err := appsales.FilterFromRequest(list)
			if err != nil {
				return err
			}
			found, err := s.coordinator().ListSales(cmd.Context(), filter)
			if err != nil {
				return err
			}
			out := make([]dto.SaleResponse, 0, len(found))
			for _, sale := range found {
				out = append(out, appsales.ToSaleResponse(sale, nil))
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	listCmd.Flags().StringVar(&list.Status, "status", "", "quote | completed")
	listCmd.Flags().StringVar(&list.From, "from", "", "YYYY-MM-DD")
	listCmd.Flags().StringVar(&list.To, "to", "", "YYYY-MM-DD")
	listCmd.Flags().IntVar(&list.Limit, "limit", 20, "máximo de ventas")
	listCmd.Flags().IntVar(&list.Offset, "offset", 0, "desplazamiento")

	var yes bool
	var operator string
	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Elimina una venta y restaura su stock (la comisión se conserva)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("confirmar con --yes")
			}
			if err := s.coordinator().DeleteSale(cmd.Context(), args[0], operator); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "venta %s eliminada\n", args[0])
			return nil
		},
	}
	del.Flags().BoolVar(&yes, "yes", false, "confirma la eliminación")
	del.Flags().StringVar(&operator, "operator", "posctl", "operador registrado en los movimientos")

	sales.AddCommand(show, listCmd, del)
	return sales
}

func (s *session) stockCmd() *cobra.Command {
	stock := &cobra.Command{Use: "stock", Short: "Consulta de existencias"}

	var variant string
	show := &cobra.Command{
		Use:   "show <product-id>",
		Short: "Stock actual de un producto o de una talla",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := entity.StockKey{ProductID: args[0], VariantID: variant}
			qty, err := s.stores.Stock.Get(cmd.Context(), key)
			if err != nil {
				return err
			}
			if key.IsVariant() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s talla %s: %d\n", key.ProductID, key.VariantID, qty)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d\n", key.ProductID, qty)
			return nil
		},
	}
	show.Flags().StringVar(&variant, "variant", "", "id de la talla")
	stock.AddCommand(show)
	return stock
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
