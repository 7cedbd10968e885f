package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"fieldline/internal/api"
	"fieldline/internal/board"
	"fieldline/internal/config"
	"fieldline/internal/db"
	"fieldline/internal/devserver"
	"fieldline/internal/domain"
	"fieldline/internal/events"
	"fieldline/internal/export"
	"fieldline/internal/forms"
	"fieldline/internal/logging"
	"fieldline/internal/migrate"
	"fieldline/internal/repo"
	"fieldline/internal/session"
	"fieldline/internal/share"
	"fieldline/internal/status"
)

var rootCmd = &cobra.Command{
	Use:   "fl",
	Short: "Fieldline dispatch CLI",
	Long: `Fieldline is the dispatcher's console for a field-service operation:
orders come in from aggregators, engineers pick them up by the hour, and
every closed visit flows back through a report link.

- Orders: created from inbound calls, scheduled to an hour slot, handed to
  an engineer (assign/unassign), and closed through the engineer's report.
- Board: the day view. One row per engineer, one column per hour from
  08:00 to 23:00, plus the pool of unassigned orders.
- Engineers: registered, approved by the dispatcher, and toggled on/off
  duty per day.
- Reports: engineers open a token link (share it as a QR code), submit the
  final price, and optionally request a repeat visit.
- Money: monthly motivation, payout balances and profit, exportable to
  XLSX.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		workspace := viper.GetString("workspace")
		if _, err := db.EnsureWorkspace(workspace); err != nil {
			return err
		}
		return nil
	},
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("FIELDLINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().String("base-url", "", "backend base URL (overrides config)")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("base-url", rootCmd.PersistentFlags().Lookup("base-url"))
}

func registerCommands() {
	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(logoutCmd())
	rootCmd.AddCommand(ordersCmd())
	rootCmd.AddCommand(boardCmd())
	rootCmd.AddCommand(engineersCmd())
	rootCmd.AddCommand(dictCmd())
	rootCmd.AddCommand(repeatsCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(motivationCmd())
	rootCmd.AddCommand(payoutsCmd())
	rootCmd.AddCommand(profitCmd())
	rootCmd.AddCommand(serveCmd())
}

// --- auth ---

func loginCmd() *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with the backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" {
				return fmt.Errorf("--username required")
			}
			if password == "" {
				fmt.Print("Password: ")
				reader := bufio.NewReader(os.Stdin)
				line, err := reader.ReadString('\n')
				if err != nil {
					return err
				}
				password = strings.TrimSpace(line)
			}
			return withClient(cmd.Context(), func(ctx context.Context, c *api.Client) error {
				if err := c.Login(ctx, username, password); err != nil {
					return err
				}
				if exp, err := c.Session.ExpiresAt(); err == nil {
					fmt.Printf("Logged in as %s (token expires %s)\n", username, exp.Local().Format(time.RFC822))
				} else {
					fmt.Printf("Logged in as %s\n", username)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "dispatcher username")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Drop the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := loadSession()
			if err != nil {
				return err
			}
			sess.OnInvalidate = nil
			sess.Invalidate()
			fmt.Println("Logged out.")
			return nil
		},
	}
}

// --- orders ---

func ordersCmd() *cobra.Command {
	orders := &cobra.Command{
		Use:   "orders",
		Short: "Manage orders",
	}
	orders.AddCommand(ordersListCmd())
	orders.AddCommand(ordersCreateCmd())
	orders.AddCommand(ordersEditCmd())
	orders.AddCommand(ordersAssignCmd())
	orders.AddCommand(ordersUnassignCmd())
	orders.AddCommand(ordersCancelCmd())
	orders.AddCommand(ordersStatusCmd())
	return orders
}

func ordersStatusCmd() *cobra.Command {
	var erp int64
	var to string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Move an order to another status",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !status.Known(to) {
				return fmt.Errorf("unknown status %q", to)
			}
			return withClient(cmd.Context(), func(ctx context.Context, c *api.Client) error {
				order, err := c.SetOrderStatus(ctx, erp, to)
				if err != nil {
					return err
				}
				return printJSONOrTable(order)
			})
		},
	}
	cmd.Flags().Int64Var(&erp, "erp", 0, "order erp number")
	cmd.Flags().StringVar(&to, "to", "", "target status")
	_ = cmd.MarkFlagRequired("erp")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func ordersListCmd() *cobra.Command {
	var date, tab string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List orders for a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !status.KnownTab(tab) {
				return fmt.Errorf("unknown tab %q", tab)
			}
			return withClient(cmd.Context(), func(ctx context.Context, c *api.Client) error {
				items, err := c.Orders(ctx, date)
				if err != nil {
					return err
				}
				b := board.New(c)
				b.SetOrders(items)
				filtered := b.Filter(tab)
				if viper.GetBool("json") {
					return printJSON(filtered)
				}
				renderOrders(filtered)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", today(), "day (YYYY-MM-DD, empty for all)")
	cmd.Flags().StringVar(&tab, "tab", status.TabAll, "tab filter (all, in_progress, closed, or a status)")
	return cmd
}

func addOrderFormFlags(cmd *cobra.Command, f *forms.OrderForm, price, percent *string, phones *[]string) {
	cmd.Flags().Int64Var(&f.AggregatorID, "source", 0, "source (aggregator) id")
	cmd.Flags().Int64Var(&f.ProblemID, "problem", 0, "problem id")
	cmd.Flags().StringVar(price, "price", "", "quoted price")
	cmd.Flags().StringVar(percent, "percent", "", "our commission share, 0..100")
	cmd.Flags().StringVar(&f.ClientName, "client", "", "client name")
	cmd.Flags().StringArrayVar(phones, "phone", nil, "client phone (repeatable)")
	cmd.Flags().StringVar(&f.Address, "address", "", "address")
	cmd.Flags().StringVar(&f.WorkVolume, "volume", "", "work volume")
	cmd.Flags().StringVar(&f.Note, "note", "", "note")
	cmd.Flags().StringVar(&f.Date, "date", "", "scheduled day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.Time, "time", "", "scheduled hour (HH:MM)")
}

func applyOrderFormInput(f *forms.OrderForm, price, percent string, phones []string) error {
	if price != "" && !f.SetPrice(price) {
		return fmt.Errorf("invalid price %q", price)
	}
	if percent != "" && !f.SetPercent(percent) {
		return fmt.Errorf("invalid percent %q", percent)
	}
	if len(phones) > 0 {
		f.Phones = phones
	}
	return nil
}

func ordersCreateCmd() *cobra.Command {
	f := forms.NewOrderForm()
	var price, percent string
	var phones []string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an order",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := applyOrderFormInput(f, price, percent, phones); err != nil {
				return err
			}
			req, err := f.BuildRequest()
			if err != nil {
				return err
			}
			return withClient(cmd.Context(), func(ctx context.Context, c *api.Client) error {
				order, err := c.CreateOrder(ctx, req)
				if err != nil {
					return err
				}
				return printJSONOrTable(order)
			})
		},
	}
	addOrderFormFlags(cmd, f, &price, &percent, &phones)
	return cmd
}

func ordersEditCmd() *cobra.Command {
	var erp int64
	var price, percent string
	var phones []string
	overrides := &forms.OrderForm{}
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit an order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, c *api.Client) error {
				current, err := findOrder(ctx, c, erp)
				if err != nil {
					return err
				}
				f := forms.FromOrder(current)
				if cmd.Flags().Changed("source") {
					f.AggregatorID = overrides.AggregatorID
				}
				if cmd.Flags().Changed("problem") {
					f.ProblemID = overrides.ProblemID
				}
				if cmd.Flags().Changed("client") {
					f.ClientName = overrides.ClientName
				}
				if cmd.Flags().Changed("address") {
					f.Address = overrides.Address
				}
				if cmd.Flags().Changed("volume") {
					f.WorkVolume = overrides.WorkVolume
				}
				if cmd.Flags().Changed("note") {
					f.Note = overrides.Note
				}
				if cmd.Flags().Changed("date") {
					f.Date = overrides.Date
				}
				if cmd.Flags().Changed("time") {
					f.Time = overrides.Time
				}
				if err := applyOrderFormInput(f, price, percent, phones); err != nil {
					return err
				}
				req, err := f.BuildRequest()
				if err != nil {
					return err
				}
				order, err := c.UpdateOrder(ctx, erp, req)
				if err != nil {
					return err
				}
				return printJSONOrTable(order)
			})
		},
	}
	cmd.Flags().Int64Var(&erp, "erp", 0, "order erp number")
	_ = cmd.MarkFlagRequired("erp")
	addOrderFormFlags(cmd, overrides, &price, &percent, &phones)
	return cmd
}

func ordersAssignCmd() *cobra.Command {
	var erp, engineerID int64
	var date string
	cmd := &cobra.Command{
		Use:   "assign",
		Short: "Assign an order to an engineer",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBoard(cmd.Context(), date, func(ctx context.Context, b *board.Board) error {
				b.SelectEngineer(erp, engineerID)
				err := b.Assign(ctx, erp)
				printBoardOutcome(b, erp)
				return err
			})
		},
	}
	cmd.Flags().Int64Var(&erp, "erp", 0, "order erp number")
	cmd.Flags().Int64Var(&engineerID, "engineer", 0, "engineer id")
	cmd.Flags().StringVar(&date, "date", today(), "day context")
	_ = cmd.MarkFlagRequired("erp")
	_ = cmd.MarkFlagRequired("engineer")
	return cmd
}

func ordersUnassignCmd() *cobra.Command {
	var erp int64
	var date string
	cmd := &cobra.Command{
		Use:   "unassign",
		Short: "Return an order to the pool",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBoard(cmd.Context(), date, func(ctx context.Context, b *board.Board) error {
				err := b.Unassign(ctx, erp)
				printBoardOutcome(b, erp)
				return err
			})
		},
	}
	cmd.Flags().Int64Var(&erp, "erp", 0, "order erp number")
	cmd.Flags().StringVar(&date, "date", today(), "day context")
	_ = cmd.MarkFlagRequired("erp")
	return cmd
}

func ordersCancelCmd() *cobra.Command {
	var erp int64
	var date string
	cmd := &cobra.Command{
		Use:   "cancel",
		Short: "Cancel an order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBoard(cmd.Context(), date, func(ctx context.Context, b *board.Board) error {
				err := b.Cancel(ctx, erp)
				printBoardOutcome(b, erp)
				return err
			})
		},
	}
	cmd.Flags().Int64Var(&erp, "erp", 0, "order erp number")
	cmd.Flags().StringVar(&date, "date", today(), "day context")
	_ = cmd.MarkFlagRequired("erp")
	return cmd
}

// --- board ---

func boardCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Show the day board",
		Long:  "One row per engineer (on duty first), one column per hour slot, plus the pool of unassigned orders below.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBoard(cmd.Context(), date, func(ctx context.Context, b *board.Board) error {
				if viper.GetBool("json") {
					return printJSON(map[string]any{
						"orders":     b.Orders(),
						"engineers":  b.EngineersOrdered(),
						"unassigned": b.Unassigned(),
					})
				}
				renderGrid(b)
				fmt.Println()
				fmt.Println("Неназначенные:")
				renderOrders(b.Unassigned())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", today(), "day (YYYY-MM-DD)")
	return cmd
}

// --- engineers ---

func engineersCmd() *cobra.Command {
	eng := &cobra.Command{
		Use:   "engineers",
		Short: "Manage engineers",
	}
	eng.AddCommand(engineersListCmd())
	eng.AddCommand(engineersCreateCmd())
	eng.AddCommand(engineersApproveCmd())
	eng.AddCommand(engineersToggleCmd())
	return eng
}

func engineersListCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List engineers, on duty first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, c *api.Client) error {
				items, err := c.Engineers(ctx, date)
				if err != nil {
					return err
				}
				b := board.New(c)
				b.SetEngineers(items)
				ordered := b.EngineersOrdered()
				if viper.GetBool("json") {
					return printJSON(ordered)
				}
				renderEngineers(ordered)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", today(), "day (YYYY-MM-DD)")
	return cmd
}

func engineersCreateCmd() *cobra.Command {
	f := &forms.EngineerForm{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register an engineer",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := f.BuildRequest()
			if err != nil {
				return err
			}
			return withClient(cmd.Context(), func(ctx context.Context, c *api.Client) error {
				eng, err := c.CreateEngineer(ctx, req)
				if err != nil {
					return err
				}
				return printJSONOrTable(eng)
			})
		},
	}
	cmd.Flags().StringVar(&f.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&f.SecondName, "second-name", "", "second name")
	cmd.Flags().StringVar(&f.Username, "username", "", "username")
	cmd.Flags().StringVar(&f.Phone, "phone", "", "phone")
	cmd.Flags().StringVar(&f.TelegramID, "telegram", "", "telegram id")
	return cmd
}

func engineersApproveCmd() *cobra.Command {
	var id int64
	cmd := &cobra.Command{
		Use:   "approve",
		Short: "Approve an engineer for assignments",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBoard(cmd.Context(), "", func(ctx context.Context, b *board.Board) error {
				err := b.Approve(ctx, id)
				printNotification(b)
				return err
			})
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "engineer id")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func engineersToggleCmd() *cobra.Command {
	var id int64
	cmd := &cobra.Command{
		Use:   "toggle",
		Short: "Toggle an engineer's on-duty flag",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBoard(cmd.Context(), "", func(ctx context.Context, b *board.Board) error {
				err := b.ToggleWorking(ctx, id)
				printNotification(b)
				return err
			})
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "engineer id")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

// --- dictionaries ---

func dictCmd() *cobra.Command {
	dict := &cobra.Command{
		Use:   "dict",
		Short: "Manage reference dictionaries",
	}
	dict.AddCommand(dictListCmd("sources", "List inbound sources",
		func(ctx context.Context, c *api.Client) ([]domain.DictionaryItem, error) { return c.Sources(ctx) },
		func(ctx context.Context, c *api.Client, name string) (domain.DictionaryItem, error) {
			return c.CreateSource(ctx, name)
		}))
	dict.AddCommand(dictListCmd("problems", "List problem types",
		func(ctx context.Context, c *api.Client) ([]domain.DictionaryItem, error) { return c.Problems(ctx) },
		func(ctx context.Context, c *api.Client, name string) (domain.DictionaryItem, error) {
			return c.CreateProblem(ctx, name)
		}))
	return dict
}

func dictListCmd(use, short string,
	list func(context.Context, *api.Client) ([]domain.DictionaryItem, error),
	create func(context.Context, *api.Client, string) (domain.DictionaryItem, error),
) *cobra.Command {
	cmd := &cobra.Command{Use: use, Short: short}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, c *api.Client) error {
				items, err := list(ctx, c)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				t := newTable(table.Row{"ID", "Название"})
				for _, it := range items {
					t.AppendRow(table.Row{it.ID, it.Name})
				}
				t.Render()
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Add an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, c *api.Client) error {
				item, err := create(ctx, c, args[0])
				if err != nil {
					return err
				}
				return printJSONOrTable(item)
			})
		},
	})
	return cmd
}

// --- repeats ---

func repeatsCmd() *cobra.Command {
	repeats := &cobra.Command{
		Use:   "repeats",
		Short: "Manage repeat-visit requests",
	}
	repeats.AddCommand(repeatsListCmd())
	repeats.AddCommand(repeatsConfirmCmd())
	return repeats
}

func repeatsListCmd() *cobra.Command {
	var st string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List repeat requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, c *api.Client) error {
				reqs, err := c.RepeatRequests(ctx, st)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(reqs)
				}
				t := newTable(table.Row{"ID", "Заказ", "Описание", "Статус", "Дата"})
				for _, r := range reqs {
					var erp int64
					if r.Order != nil {
						erp = r.Order.ErpNumber
					}
					scheduled := ""
					if r.ScheduledAt != nil {
						scheduled = r.ScheduledAt.Local().Format("2006-01-02")
					}
					t.AppendRow(table.Row{r.ID, erp, r.Description, r.Status, scheduled})
				}
				t.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&st, "status", "pending", "request status filter (empty for all)")
	return cmd
}

func repeatsConfirmCmd() *cobra.Command {
	var id int64
	f := forms.NewOrderForm()
	var price, percent string
	var phones []string
	cmd := &cobra.Command{
		Use:   "confirm",
		Short: "Confirm a repeat request into a follow-up order",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := applyOrderFormInput(f, price, percent, phones); err != nil {
				return err
			}
			req, err := f.BuildRequest()
			if err != nil {
				return err
			}
			return withClient(cmd.Context(), func(ctx context.Context, c *api.Client) error {
				order, err := c.ConfirmRepeatRequest(ctx, id, req)
				if err != nil {
					return err
				}
				return printJSONOrTable(order)
			})
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "repeat request id")
	_ = cmd.MarkFlagRequired("id")
	addOrderFormFlags(cmd, f, &price, &percent, &phones)
	return cmd
}

// --- reports ---

func reportCmd() *cobra.Command {
	report := &cobra.Command{
		Use:   "report",
		Short: "Engineer report links and submissions",
	}
	report.AddCommand(reportInfoCmd())
	report.AddCommand(reportSubmitCmd())
	report.AddCommand(reportShareCmd())
	return report
}

func reportInfoCmd() *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show the order behind a report token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, c *api.Client) error {
				info, err := c.ReportLinkInfo(ctx, token)
				if err != nil {
					return err
				}
				return printJSONOrTable(info)
			})
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "report token")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}

func reportSubmitCmd() *cobra.Command {
	var payload domain.ReportPayload
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a field report",
		RunE: func(cmd *cobra.Command, args []string) error {
			if payload.HasRepeat && payload.RepeatNote == "" {
				return fmt.Errorf("--repeat-note required with --repeat")
			}
			return withClient(cmd.Context(), func(ctx context.Context, c *api.Client) error {
				resp, err := c.SubmitReport(ctx, payload)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(resp)
				}
				fmt.Println(resp.Message)
				if resp.Status != "" {
					fmt.Printf("Статус заказа: %s\n", status.Label(resp.Status))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&payload.Token, "token", "", "report token")
	cmd.Flags().StringVar(&payload.FinishPrice, "price", "", "final price")
	cmd.Flags().BoolVar(&payload.HasRepeat, "repeat", false, "request a repeat visit")
	cmd.Flags().StringVar(&payload.RepeatDate, "repeat-date", "", "repeat day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&payload.RepeatNote, "repeat-note", "", "what to do on the repeat visit")
	_ = cmd.MarkFlagRequired("token")
	_ = cmd.MarkFlagRequired("price")
	return cmd
}

func reportShareCmd() *cobra.Command {
	var erp int64
	var qrPath string
	cmd := &cobra.Command{
		Use:   "share",
		Short: "Print an order's report link, optionally as a QR code",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return withClient(cmd.Context(), func(ctx context.Context, c *api.Client) error {
				token, err := c.OrderReportToken(ctx, erp)
				if err != nil {
					return err
				}
				link := share.ReportLink(cfg.ReportLinkBase(), token)
				fmt.Println(link)
				if qrPath != "" {
					if err := share.WriteQR(link, qrPath); err != nil {
						return err
					}
					fmt.Printf("QR code written to %s\n", qrPath)
				}
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&erp, "erp", 0, "order erp number")
	cmd.Flags().StringVar(&qrPath, "qr", "", "write a QR code PNG to this path")
	_ = cmd.MarkFlagRequired("erp")
	return cmd
}

// --- money ---

func motivationCmd() *cobra.Command {
	var month, out string
	cmd := &cobra.Command{
		Use:   "motivation",
		Short: "Monthly engineer motivation table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, c *api.Client) error {
				rows, err := c.EngineerMotivations(ctx, month)
				if err != nil {
					return err
				}
				if out != "" {
					wb, err := export.MotivationWorkbook(month, rows)
					if err != nil {
						return err
					}
					if err := wb.SaveAs(out); err != nil {
						return err
					}
					fmt.Printf("Written to %s\n", out)
					return nil
				}
				if viper.GetBool("json") {
					return printJSON(rows)
				}
				t := newTable(table.Row{"СИ", "Отчёты", "Сумма", "Вал", "Мотивация"})
				for _, r := range rows {
					t.AppendRow(table.Row{r.EngineerName, r.ReportsCount,
						fmt.Sprintf("%.2f", r.OrdersTotalAmount),
						fmt.Sprintf("%.2f", r.GrossProfit),
						fmt.Sprintf("%.2f", r.TotalMotivationAmount)})
				}
				t.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&month, "month", time.Now().Format("2006-01"), "month (YYYY-MM)")
	cmd.Flags().StringVar(&out, "out", "", "write an XLSX workbook to this path")
	return cmd
}

func payoutsCmd() *cobra.Command {
	var from, to, out string
	cmd := &cobra.Command{
		Use:   "payouts",
		Short: "Engineer payout balances",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, c *api.Client) error {
				rows, err := c.EngineerPayouts(ctx, from, to)
				if err != nil {
					return err
				}
				if out != "" {
					wb, err := export.PayoutWorkbook(rows)
					if err != nil {
						return err
					}
					if err := wb.SaveAs(out); err != nil {
						return err
					}
					fmt.Printf("Written to %s\n", out)
					return nil
				}
				if viper.GetBool("json") {
					return printJSON(rows)
				}
				t := newTable(table.Row{"СИ", "Зарплата", "Выплачено", "Осталось"})
				for _, r := range rows {
					t.AppendRow(table.Row{strings.TrimSpace(r.FirstName + " " + r.SecondName),
						fmt.Sprintf("%.2f", r.Salary),
						fmt.Sprintf("%.2f", r.PaidAdvance),
						fmt.Sprintf("%.2f", r.Left)})
				}
				t.Render()
				return nil
			})
		},
	}
	cmd.AddCommand(payoutsPayCmd())
	cmd.Flags().StringVar(&from, "from", firstOfMonth(), "range start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", today(), "range end (YYYY-MM-DD)")
	cmd.Flags().StringVar(&out, "out", "", "write an XLSX workbook to this path")
	return cmd
}

func payoutsPayCmd() *cobra.Command {
	var engineerID int64
	var month string
	var amount float64
	cmd := &cobra.Command{
		Use:   "pay",
		Short: "Record an advance payment",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, c *api.Client) error {
				row, err := c.PayEngineer(ctx, engineerID, month, amount)
				if err != nil {
					return err
				}
				return printJSONOrTable(row)
			})
		},
	}
	cmd.Flags().Int64Var(&engineerID, "engineer", 0, "engineer id")
	cmd.Flags().StringVar(&month, "month", time.Now().Format("2006-01"), "month (YYYY-MM)")
	cmd.Flags().Float64Var(&amount, "amount", 0, "amount")
	_ = cmd.MarkFlagRequired("engineer")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func profitCmd() *cobra.Command {
	var from, to, out string
	cmd := &cobra.Command{
		Use:   "profit",
		Short: "Daily net profit for a range",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, c *api.Client) error {
				rows, err := c.Profit(ctx, from, to)
				if err != nil {
					return err
				}
				if out != "" {
					wb, err := export.ProfitWorkbook(rows)
					if err != nil {
						return err
					}
					if err := wb.SaveAs(out); err != nil {
						return err
					}
					fmt.Printf("Written to %s\n", out)
					return nil
				}
				if viper.GetBool("json") {
					return printJSON(rows)
				}
				t := newTable(table.Row{"День", "Прибыль"})
				for _, r := range rows {
					t.AppendRow(table.Row{r.Period, fmt.Sprintf("%.2f", r.NetProfit)})
				}
				t.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", firstOfMonth(), "range start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", today(), "range end (YYYY-MM-DD)")
	cmd.Flags().StringVar(&out, "out", "", "write an XLSX workbook to this path")
	return cmd
}

// --- serve ---

func serveCmd() *cobra.Command {
	var addr, seedUser, seedPassword string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local dispatch backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := viper.GetString("workspace")
			secret := os.Getenv("FIELDLINE_JWT_SECRET")
			if secret == "" {
				return fmt.Errorf("FIELDLINE_JWT_SECRET is required for bearer auth")
			}
			cfg, err := config.Load(workspace)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Serve.Addr
			}
			logger, err := logging.New(os.Getenv("FIELDLINE_ENV"))
			if err != nil {
				return err
			}
			defer logger.Sync()
			conn, err := db.Open(db.Config{Workspace: workspace})
			if err != nil {
				return err
			}
			defer conn.Close()
			if err := migrate.Migrate(conn); err != nil {
				return err
			}
			r := repo.Repo{DB: conn}
			if err := devserver.Seed(cmd.Context(), r, seedUser, seedPassword, time.Now()); err != nil {
				return err
			}
			handler, err := devserver.New(devserver.Config{
				Repo:      r,
				Events:    &events.Writer{DB: conn},
				JWTSecret: secret,
				Logger:    logger,
			})
			if err != nil {
				return err
			}
			srv := &http.Server{Addr: addr, Handler: handler}
			go func() {
				<-cmd.Context().Done()
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(ctx)
			}()
			logger.Info("serving dispatch API", zap.String("addr", addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().StringVar(&seedUser, "seed-user", "dispatcher", "dispatcher account to provision")
	cmd.Flags().StringVar(&seedPassword, "seed-password", "dispatcher", "dispatcher account password")
	return cmd
}

// --- helpers ---

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.GetString("workspace"))
	if err != nil {
		return nil, err
	}
	if override := viper.GetString("base-url"); override != "" {
		cfg.Server.BaseURL = override
	}
	return cfg, nil
}

func loadSession() (*session.Session, error) {
	dir, err := db.EnsureWorkspace(viper.GetString("workspace"))
	if err != nil {
		return nil, err
	}
	sess, err := session.Load(dir)
	if err != nil {
		return nil, err
	}
	sess.OnInvalidate = func() {
		fmt.Println("Сессия истекла. Войдите снова: fl login")
	}
	return sess, nil
}

func withClient(ctx context.Context, fn func(context.Context, *api.Client) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	sess, err := loadSession()
	if err != nil {
		return err
	}
	return fn(ctx, api.New(cfg.Server.BaseURL, sess))
}

func withBoard(ctx context.Context, date string, fn func(context.Context, *board.Board) error) error {
	return withClient(ctx, func(ctx context.Context, c *api.Client) error {
		orders, err := c.Orders(ctx, date)
		if err != nil {
			return err
		}
		engineers, err := c.Engineers(ctx, date)
		if err != nil {
			return err
		}
		b := board.New(c)
		b.SetOrders(orders)
		b.SetEngineers(engineers)
		return fn(ctx, b)
	})
}

func findOrder(ctx context.Context, c *api.Client, erpNumber int64) (domain.Order, error) {
	orders, err := c.Orders(ctx, "")
	if err != nil {
		return domain.Order{}, err
	}
	for _, o := range orders {
		if o.ErpNumber == erpNumber {
			return o, nil
		}
	}
	return domain.Order{}, fmt.Errorf("order %d not found", erpNumber)
}

func printBoardOutcome(b *board.Board, erpNumber int64) {
	if msg := b.ItemMessage(erpNumber); msg != "" {
		fmt.Println(msg)
	}
	printNotification(b)
}

func printNotification(b *board.Board) {
	if n := b.Notifier.Current(time.Now()); n != nil {
		fmt.Println(n.Message)
	}
}

func newTable(header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(header)
	return t
}

func renderOrders(orders []domain.Order) {
	t := newTable(table.Row{"ERP", "Клиент", "Адрес", "Цена", "Время", "СИ", "Статус"})
	for _, o := range orders {
		scheduled := ""
		if o.ScheduledAt != nil {
			scheduled = o.ScheduledAt.Local().Format("02.01 15:04")
		}
		engineer := ""
		if o.Engineer != nil {
			engineer = o.Engineer.FullName()
		}
		t.AppendRow(table.Row{o.ErpNumber, o.ClientName, o.Address, o.Price, scheduled, engineer, status.Label(o.Status)})
	}
	t.Render()
}

func renderEngineers(engineers []domain.Engineer) {
	t := newTable(table.Row{"ID", "СИ", "Телефон", "Допущен", "На смене"})
	for _, e := range engineers {
		t.AppendRow(table.Row{e.ID, e.FullName(), e.Phone, yesNo(e.IsApproved), yesNo(e.IsWorking)})
	}
	t.Render()
}

func renderGrid(b *board.Board) {
	header := table.Row{"СИ"}
	for _, h := range board.Hours {
		header = append(header, h)
	}
	t := newTable(header)
	for _, e := range b.EngineersOrdered() {
		row := table.Row{e.FullName()}
		for _, h := range board.Hours {
			var cell []string
			for _, o := range b.OrdersInSlot(e.ID, h) {
				cell = append(cell, fmt.Sprintf("#%d", o.ErpNumber))
			}
			row = append(row, strings.Join(cell, " "))
		}
		t.AppendRow(row)
	}
	t.Render()
}

func yesNo(v bool) string {
	if v {
		return "да"
	}
	return "нет"
}

func printJSONOrTable(v any) error {
	if viper.GetBool("json") {
		return printJSON(v)
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func today() string { return time.Now().Format("2006-01-02") }

func firstOfMonth() string {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).Format("2006-01-02")
}
