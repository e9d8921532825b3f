// Package webui serves the open-lines dashboard over the reconciled
// artifact: a customer selector, per-customer KPI cards and detail table,
// and a filtered xlsx export.
//
// Routes:
//
//	GET /              → selector plus, with ?customer=, the customer view
//	GET /export.xlsx   → the filtered rows as an xlsx download
//	GET /api/customers → the distinct customer names as JSON
package webui

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"openlines/internal/money"
	"openlines/internal/schema"
	"openlines/pkg/records"
)

// Config controls server startup.
type Config struct {
	Addr string
}

// Server wraps http.Server around a loaded dataset.
type Server struct {
	cfg  Config
	data *Dataset
	mux  *http.ServeMux
	tmpl *template.Template
	now  func() time.Time
}

// NewServer constructs a Server with routes and the embedded template.
func NewServer(cfg Config, data *Dataset) *Server {
	s := &Server{
		cfg:  cfg,
		data: data,
		mux:  http.NewServeMux(),
		tmpl: template.Must(template.New("index").Parse(indexHTML)),
		now:  time.Now,
	}
	s.routes()
	return s
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return http.ListenAndServe(s.cfg.Addr, s.mux)
}

// Handler exposes the mux, mainly for tests.
func (s *Server) Handler() http.Handler { return s.mux }

func (s *Server) routes() {
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/export.xlsx", s.handleExport)
	s.mux.HandleFunc("/api/customers", s.handleAPICustomers)
}

// detailRow is one line of the customer table, rendered.
type detailRow struct {
	OrderDate   string
	SalesID     string
	ItemID      string
	OpenQty     string
	Status      string
	Arrival     string
	InvoiceDate string
	AmountBRL   string
	Stock       string
}

// viewData feeds the page template.
type viewData struct {
	Customers []string
	Customer  string
	From, To  string

	HasView     bool
	Account     string
	Responsible string
	TotalBRL    string
	Lines       int
	Orders      int
	Rows        []detailRow
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	customer, from, to := filterParams(r)

	data := viewData{
		Customers: s.data.Customers(),
		Customer:  customer,
		From:      r.URL.Query().Get("from"),
		To:        r.URL.Query().Get("to"),
	}
	if customer != "" {
		rows := s.data.Filter(customer, from, to)
		sum := Summarize(rows)
		data.HasView = true
		data.Account = sum.Account
		data.Responsible = sum.Responsible
		data.TotalBRL = money.BRL(sum.Total)
		data.Lines = sum.Lines
		data.Orders = sum.Orders
		data.Rows = make([]detailRow, 0, len(rows))
		for _, row := range rows {
			data.Rows = append(data.Rows, renderRow(row))
		}
	}
	if err := s.tmpl.Execute(w, data); err != nil {
		log.Println("template error:", err)
	}
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	customer, from, to := filterParams(r)
	if customer == "" {
		http.Error(w, "customer is required", http.StatusBadRequest)
		return
	}
	rows := s.data.Filter(customer, from, to)
	sum := Summarize(rows)

	stamp := s.now().Format("20060102")
	f := excelize.NewFile()
	defer f.Close()
	sheet := "Carteira " + stamp
	f.SetSheetName("Sheet1", sheet)

	header := []string{
		"Data do Pedido", "Pedido", "Item", "Qtd Aberta", "Status",
		schema.ColArrivalDisplay, schema.ColInvoiceDate, "Valor", "Estoque",
	}
	for i, h := range header {
		cellRef, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cellRef, h)
	}
	for i, row := range rows {
		d := renderRow(row)
		for j, v := range []string{
			d.OrderDate, d.SalesID, d.ItemID, d.OpenQty, d.Status,
			d.Arrival, d.InvoiceDate, d.AmountBRL, d.Stock,
		} {
			cellRef, _ := excelize.CoordinatesToCellName(j+1, i+2)
			f.SetCellValue(sheet, cellRef, v)
		}
	}

	account := sum.Account
	if account == "" {
		account = "sem_conta"
	}
	w.Header().Set("Content-Type",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=carteira_%s_%s.xlsx", account, stamp))
	if _, err := f.WriteTo(w); err != nil {
		log.Println("export error:", err)
	}
}

func (s *Server) handleAPICustomers(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	names := s.data.Customers()
	if names == nil {
		names = []string{}
	}
	if err := json.NewEncoder(w).Encode(names); err != nil {
		log.Println("encode error:", err)
	}
}

// filterParams extracts the customer/date-range query parameters. Bad dates
// are treated as unset.
func filterParams(r *http.Request) (customer string, from, to time.Time) {
	q := r.URL.Query()
	customer = strings.TrimSpace(q.Get("customer"))
	if v := q.Get("from"); v != "" {
		from, _ = time.Parse(artifactDateLayout, v)
	}
	if v := q.Get("to"); v != "" {
		to, _ = time.Parse(artifactDateLayout, v)
	}
	return customer, from, to
}

func renderRow(r records.Record) detailRow {
	amount := ""
	if a, ok := r.Amount(schema.FieldSalesAmount); ok {
		amount = money.BRL(a)
	}
	return detailRow{
		OrderDate:   r.Text(schema.FieldOrderDate),
		SalesID:     r.Text(schema.FieldSalesID),
		ItemID:      r.Text(schema.FieldItemID),
		OpenQty:     r.Text(schema.FieldOpenQty),
		Status:      r.Text(schema.FieldLogisticsStatus),
		Arrival:     r.Text(schema.ColArrivalDisplay),
		InvoiceDate: r.Text(schema.ColInvoiceDate),
		AmountBRL:   amount,
		Stock:       StockBucket(r),
	}
}

// indexHTML is an embedded, minimal page with vanilla styling.
//
//go:embed index.tmpl.html
var indexHTML string
