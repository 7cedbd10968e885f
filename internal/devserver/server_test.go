package devserver

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"go.uber.org/zap"

	"fieldline/internal/api"
	"fieldline/internal/db"
	"fieldline/internal/domain"
	"fieldline/internal/events"
	"fieldline/internal/migrate"
	"fieldline/internal/repo"
	"fieldline/internal/session"
	"fieldline/internal/status"
)

func newTestServer(t *testing.T) (string, func()) {
	t.Helper()
	workspace := t.TempDir()
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	r := repo.Repo{DB: conn}
	if err := Seed(context.Background(), r, "dispatcher", "secret", time.Now()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	handler, err := New(Config{
		Repo:      r,
		Events:    &events.Writer{DB: conn},
		JWTSecret: "test-secret",
		Logger:    zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("build handler: %v", err)
	}
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := &http.Server{Handler: handler}
	go srv.Serve(ln)
	return "http://" + ln.Addr().String(), func() {
		srv.Shutdown(context.Background())
		ln.Close()
		conn.Close()
	}
}

func newTestClient(t *testing.T, baseURL string) *api.Client {
	t.Helper()
	sess, err := session.Load(t.TempDir())
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	return api.New(baseURL, sess)
}

func login(t *testing.T, c *api.Client) {
	t.Helper()
	if err := c.Login(context.Background(), "dispatcher", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}
}

func orderRequest() domain.CreateOrderRequest {
	return domain.CreateOrderRequest{
		AggregatorID: 1,
		ProblemID:    1,
		Price:        "3000",
		OurPercent:   40,
		ClientName:   "Иван Иванов",
		Phones:       []string{"+79990001122"},
		Address:      "Ленина 1",
		WorkVolume:   "диагностика",
		Status:       status.New,
	}
}

func TestAuthRequired(t *testing.T) {
	url, cleanup := newTestServer(t)
	defer cleanup()
	ctx := context.Background()
	c := newTestClient(t, url)

	if _, err := c.Orders(ctx, ""); !api.IsUnauthorized(err) {
		t.Fatalf("unauthenticated orders: err = %v, want unauthorized", err)
	}

	if err := c.Login(ctx, "dispatcher", "wrong"); err == nil {
		t.Fatal("login with bad password should fail")
	}
	login(t, c)
	if _, err := c.Orders(ctx, ""); err != nil {
		t.Fatalf("orders after login: %v", err)
	}
}

func TestSeededDictionaries(t *testing.T) {
	url, cleanup := newTestServer(t)
	defer cleanup()
	ctx := context.Background()
	c := newTestClient(t, url)
	login(t, c)

	sources, err := c.Sources(ctx)
	if err != nil {
		t.Fatalf("sources: %v", err)
	}
	if len(sources) == 0 {
		t.Fatal("no seeded sources")
	}
	problems, err := c.Problems(ctx)
	if err != nil {
		t.Fatalf("problems: %v", err)
	}
	if len(problems) == 0 {
		t.Fatal("no seeded problems")
	}

	added, err := c.CreateSource(ctx, "Яндекс")
	if err != nil {
		t.Fatalf("create source: %v", err)
	}
	if added.ID == 0 || added.Name != "Яндекс" {
		t.Fatalf("added source = %+v", added)
	}
}

func TestOrderLifecycle(t *testing.T) {
	url, cleanup := newTestServer(t)
	defer cleanup()
	ctx := context.Background()
	c := newTestClient(t, url)
	login(t, c)

	eng, err := c.CreateEngineer(ctx, domain.CreateEngineerRequest{FirstName: "Пётр", Username: "petr"})
	if err != nil {
		t.Fatalf("create engineer: %v", err)
	}
	if eng.IsApproved {
		t.Fatal("fresh engineer should not be approved")
	}

	order, err := c.CreateOrder(ctx, orderRequest())
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.ErpNumber == 0 || order.Status != status.New {
		t.Fatalf("created order = %+v", order)
	}
	if order.Aggregator == nil || order.Problem == nil {
		t.Fatal("order should come back with joined dictionaries")
	}

	// Unapproved engineers cannot take orders.
	if _, err := c.AssignOrder(ctx, order.ErpNumber, eng.ID); err == nil {
		t.Fatal("assign to unapproved engineer should fail")
	}

	if eng, err = c.ApproveEngineer(ctx, eng.ID); err != nil || !eng.IsApproved {
		t.Fatalf("approve: %v, %+v", err, eng)
	}
	if eng, err = c.ToggleWorking(ctx, eng.ID); err != nil || !eng.IsWorking {
		t.Fatalf("toggle: %v, %+v", err, eng)
	}

	assigned, err := c.AssignOrder(ctx, order.ErpNumber, eng.ID)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if assigned.Status != status.InProccess || assigned.Engineer == nil || assigned.Engineer.ID != eng.ID {
		t.Fatalf("assigned order = %+v", assigned)
	}

	// The pool filter: unscheduled, unassigned orders survive any date.
	pool, err := c.Orders(ctx, "2030-01-01")
	if err != nil {
		t.Fatalf("orders by date: %v", err)
	}
	found := false
	for _, o := range pool {
		if o.ErpNumber == assigned.ErpNumber {
			found = true
		}
	}
	if !found {
		t.Fatal("unscheduled order missing from the day view")
	}

	unassigned, err := c.UnassignOrder(ctx, order.ErpNumber)
	if err != nil {
		t.Fatalf("unassign: %v", err)
	}
	if unassigned.Status != status.New || unassigned.Engineer != nil {
		t.Fatalf("unassigned order = %+v", unassigned)
	}

	if _, err := c.SetOrderStatus(ctx, order.ErpNumber, status.Working); err == nil {
		t.Fatal("new -> working must be rejected")
	}

	canceled, err := c.CancelOrder(ctx, order.ErpNumber)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if canceled.Status != status.Canceled {
		t.Fatalf("canceled order = %+v", canceled)
	}
}

func TestReportAndRepeatFlow(t *testing.T) {
	url, cleanup := newTestServer(t)
	defer cleanup()
	ctx := context.Background()
	c := newTestClient(t, url)
	login(t, c)

	eng, err := c.CreateEngineer(ctx, domain.CreateEngineerRequest{FirstName: "Пётр", Username: "petr"})
	if err != nil {
		t.Fatalf("create engineer: %v", err)
	}
	if _, err := c.ApproveEngineer(ctx, eng.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	order, err := c.CreateOrder(ctx, orderRequest())
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if _, err := c.AssignOrder(ctx, order.ErpNumber, eng.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := c.SetOrderStatus(ctx, order.ErpNumber, status.Working); err != nil {
		t.Fatalf("to working: %v", err)
	}

	token, err := c.OrderReportToken(ctx, order.ErpNumber)
	if err != nil {
		t.Fatalf("report token: %v", err)
	}
	if token == "" {
		t.Fatal("order has no report token")
	}

	// Report endpoints work without a dispatcher session.
	anon := newTestClient(t, url)
	info, err := anon.ReportLinkInfo(ctx, token)
	if err != nil {
		t.Fatalf("report link info: %v", err)
	}
	if info.ErpNumber != order.ErpNumber {
		t.Fatalf("link info = %+v", info)
	}

	resp, err := anon.SubmitReport(ctx, domain.ReportPayload{
		Token:       token,
		FinishPrice: "3500",
		HasRepeat:   true,
		RepeatNote:  "проверить через неделю",
	})
	if err != nil {
		t.Fatalf("submit report: %v", err)
	}
	if !resp.Success || resp.Status != status.ClosedWithoutRepeat {
		t.Fatalf("report response = %+v", resp)
	}

	again, err := anon.SubmitReport(ctx, domain.ReportPayload{Token: token, FinishPrice: "1"})
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if again.Success {
		t.Fatal("second report should be rejected")
	}

	reqs, err := c.RepeatRequests(ctx, "pending")
	if err != nil {
		t.Fatalf("repeat requests: %v", err)
	}
	if len(reqs) != 1 {
		t.Fatalf("got %d repeat requests, want 1", len(reqs))
	}
	rr := reqs[0]
	if rr.Order == nil || rr.Order.ErpNumber != order.ErpNumber {
		t.Fatalf("repeat request order = %+v", rr.Order)
	}
	if rr.Description != "проверить через неделю" {
		t.Fatalf("repeat description = %q", rr.Description)
	}

	followUp, err := c.ConfirmRepeatRequest(ctx, rr.ID, orderRequest())
	if err != nil {
		t.Fatalf("confirm repeat: %v", err)
	}
	if !followUp.IsRepeat {
		t.Fatal("follow-up order should be flagged as repeat")
	}
	if followUp.RepeatErpNumber == nil || *followUp.RepeatErpNumber != order.ErpNumber {
		t.Fatalf("follow-up linkage = %+v", followUp)
	}
	if followUp.ErpNumber == order.ErpNumber {
		t.Fatal("follow-up must get its own erp number")
	}

	if _, err := c.ConfirmRepeatRequest(ctx, rr.ID, orderRequest()); err == nil {
		t.Fatal("double confirm should fail")
	}
	pending, err := c.RepeatRequests(ctx, "pending")
	if err != nil {
		t.Fatalf("repeat requests: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("confirmed request still pending: %+v", pending)
	}
}

func TestMoneyAggregates(t *testing.T) {
	url, cleanup := newTestServer(t)
	defer cleanup()
	ctx := context.Background()
	c := newTestClient(t, url)
	login(t, c)

	eng, err := c.CreateEngineer(ctx, domain.CreateEngineerRequest{FirstName: "Пётр", Username: "petr"})
	if err != nil {
		t.Fatalf("create engineer: %v", err)
	}
	if _, err := c.ApproveEngineer(ctx, eng.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	order, err := c.CreateOrder(ctx, orderRequest())
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if _, err := c.AssignOrder(ctx, order.ErpNumber, eng.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := c.SetOrderStatus(ctx, order.ErpNumber, status.Working); err != nil {
		t.Fatalf("to working: %v", err)
	}
	token, err := c.OrderReportToken(ctx, order.ErpNumber)
	if err != nil {
		t.Fatalf("report token: %v", err)
	}
	if _, err := c.SubmitReport(ctx, domain.ReportPayload{Token: token, FinishPrice: "3000"}); err != nil {
		t.Fatalf("submit report: %v", err)
	}

	month := time.Now().UTC().Format("2006-01")
	rows, err := c.EngineerMotivations(ctx, month)
	if err != nil {
		t.Fatalf("motivations: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d motivation rows, want 1", len(rows))
	}
	row := rows[0]
	if row.ReportsCount != 1 || row.OrdersTotalAmount != 3000 {
		t.Fatalf("motivation row = %+v", row)
	}
	if row.GrossProfit != 1200 {
		t.Fatalf("gross = %v, want 1200 (40%% of 3000)", row.GrossProfit)
	}
	if row.TotalMotivationAmount != 300 {
		t.Fatalf("motivation = %v, want 300", row.TotalMotivationAmount)
	}

	payouts, err := c.EngineerPayouts(ctx, month+"-01", time.Now().UTC().Format("2006-01-02"))
	if err != nil {
		t.Fatalf("payouts: %v", err)
	}
	if len(payouts) != 1 || payouts[0].Salary != 300 || !payouts[0].CanPay {
		t.Fatalf("payouts = %+v", payouts)
	}

	paid, err := c.PayEngineer(ctx, eng.ID, month, 100)
	if err != nil {
		t.Fatalf("pay: %v", err)
	}
	if paid.PaidAdvance != 100 || paid.Left != 200 {
		t.Fatalf("after payment = %+v", paid)
	}

	day := time.Now().UTC().Format("2006-01-02")
	profit, err := c.Profit(ctx, day, day)
	if err != nil {
		t.Fatalf("profit: %v", err)
	}
	if len(profit) != 1 || profit[0].NetProfit != 1200 {
		t.Fatalf("profit = %+v", profit)
	}
}
