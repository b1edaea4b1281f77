package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/mmeshcher/gestior/internal/draft"
	"github.com/mmeshcher/gestior/internal/model"
	"github.com/mmeshcher/gestior/internal/screen"
)

func table(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
}

func formatMoney(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

func formatQty(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func pageFooter[T any](out io.Writer, st screen.ListState[T]) {
	fmt.Fprintf(out, "page %d of %d, %d shown, %d total\n", st.Page, max(st.LastPage, 1), len(st.Items), st.Total)
}

func printProducts(out io.Writer, st screen.ListState[model.Product]) {
	w := table(out)
	fmt.Fprintln(w, "ID\tNAME\tSKU\tPRICE\tSTOCK\tSTATUS\tACTIVE")
	for _, p := range st.Items {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%t\n",
			p.ID, p.Name, p.SKU, formatMoney(p.Price), formatQty(p.Stock), p.StockStatus(), p.IsActive)
	}
	w.Flush()
	pageFooter(out, st)
}

func printClients(out io.Writer, st screen.ListState[model.Client]) {
	w := table(out)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tPHONE\tDOCUMENT")
	for _, c := range st.Items {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s %s\n", c.ID, c.Name, c.Email, c.Phone, c.DocumentType, c.DocumentNumber)
	}
	w.Flush()
	pageFooter(out, st)
}

func printPaymentMethods(out io.Writer, methods []model.PaymentMethod) {
	w := table(out)
	fmt.Fprintln(w, "ID\tNAME\tKIND\tACTIVE\tREFERENCE")
	for _, m := range methods {
		fmt.Fprintf(w, "%d\t%s\t%s\t%t\t%t\n", m.ID, m.Name, m.Description, m.IsActive, m.RequiresReference)
	}
	w.Flush()
}

func printOrders(out io.Writer, st screen.ListState[model.Order]) {
	w := table(out)
	fmt.Fprintln(w, "ID\tNUMBER\tSTATUS\tPAYMENT\tCLIENT\tTOTAL\tCREATED")
	for _, o := range st.Items {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			o.ID, o.OrderNumber, o.Status, o.PaymentStatus, o.ClientName, formatMoney(o.Total), o.CreatedAt)
	}
	w.Flush()
	pageFooter(out, st)
}

func printOrder(out io.Writer, o model.Order) {
	fmt.Fprintf(out, "order %s (id %d): %s, payment %s/%s\n", o.OrderNumber, o.ID, o.Status, o.PaymentMethod, o.PaymentStatus)
	if o.ClientName != "" {
		fmt.Fprintf(out, "client: %s\n", o.ClientName)
	}
	if o.CancelReason != "" {
		fmt.Fprintf(out, "cancel reason: %s\n", o.CancelReason)
	}

	w := table(out)
	fmt.Fprintln(w, "ITEM\tPRODUCT\tQTY\tPRICE\tSUBTOTAL")
	for _, it := range o.Items {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", it.ID, it.Name, formatQty(it.Quantity), formatMoney(it.Price), formatMoney(it.Subtotal))
	}
	w.Flush()

	fmt.Fprintf(out, "subtotal %s  discount %s  tax %s  total %s\n",
		formatMoney(o.Subtotal), formatMoney(o.Discount), formatMoney(o.TaxAmount), formatMoney(o.Total))
}

func printDraft(out io.Writer, d draft.Snapshot) {
	w := table(out)
	fmt.Fprintln(w, "PRODUCT\tQTY\tPRICE\tSUBTOTAL")
	for _, it := range d.Items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", it.Product.Name, formatQty(it.Quantity), formatMoney(it.Price), formatMoney(it.Subtotal))
	}
	w.Flush()
	fmt.Fprintf(out, "draft: subtotal %s  discount %s  total %s  (%s)\n",
		formatMoney(d.Subtotal), formatMoney(d.Discount), formatMoney(d.Total), d.PaymentMethod)
}
