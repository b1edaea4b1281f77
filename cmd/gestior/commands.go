package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mmeshcher/gestior/internal/model"
	"github.com/mmeshcher/gestior/internal/repository"
	"github.com/mmeshcher/gestior/internal/resource"
	"github.com/mmeshcher/gestior/internal/screen"
)

func (a *app) authCommand(ctx context.Context, cmd string, args []string) error {
	scope := screen.NewScope(ctx)
	defer scope.Close()

	var (
		started bool
		state   func() screen.AuthState
	)
	switch cmd {
	case "login":
		if len(args) != 2 {
			return errUsage
		}
		s := screen.NewLoginScreen(scope, a.auth)
		started, state = s.Login(args[0], args[1]), s.State
	default:
		if len(args) < 3 {
			return errUsage
		}
		f := screen.RegisterForm{
			Name:                 args[0],
			Email:                args[1],
			Password:             args[2],
			PasswordConfirmation: args[2],
		}
		if len(args) > 3 {
			f.BusinessName = strings.Join(args[3:], " ")
		}
		s := screen.NewRegisterScreen(scope, a.auth)
		started, state = s.Register(f), s.State
	}

	scope.Wait()
	st := state()
	if !started || st.User == nil {
		return screenError(st.Error, "authentication failed")
	}
	fmt.Fprintf(a.out, "logged in as %s <%s>\n", st.User.Name, st.User.Email)
	return nil
}

func (a *app) logout(ctx context.Context) error {
	scope := screen.NewScope(ctx)
	defer scope.Close()

	s := screen.NewDashboardScreen(scope, a.auth)
	s.Logout()
	scope.Wait()

	if st := s.State(); !st.LoggedOut {
		return screenError(st.Error, "logout failed")
	}
	fmt.Fprintln(a.out, "logged out")
	return nil
}

func (a *app) whoami(ctx context.Context) error {
	scope := screen.NewScope(ctx)
	defer scope.Close()

	s := screen.NewDashboardScreen(scope, a.auth)
	s.Refresh()
	scope.Wait()

	st := s.State()
	if st.Error != "" {
		a.logger.Warn("profile refresh failed, showing cached user")
		fmt.Fprintln(a.out, "(offline) "+st.Error)
	}
	if !st.HasUser {
		return screenError(st.Error, "no user in session")
	}
	fmt.Fprintf(a.out, "%d\t%s <%s>\n", st.User.ID, st.User.Name, st.User.Email)
	return nil
}

func (a *app) listProducts(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("products", flag.ContinueOnError)
	search := fs.String("search", "", "name, sku or barcode")
	category := fs.String("category", "", "category")
	activeOnly := fs.Bool("active", false, "only active products")
	all := fs.Bool("all", false, "load every page")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	f := model.ProductFilter{Search: *search, Category: *category}
	if *activeOnly {
		f.IsActive = activeOnly
	}

	scope := screen.NewScope(ctx)
	defer scope.Close()

	st, err := loadList(scope, screen.NewProductsScreen(scope, a.products, a.cfg.PageSize, f), *all)
	if err != nil {
		return err
	}
	printProducts(a.out, st)
	return nil
}

func (a *app) updateStock(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errUsage
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	qty, err := parseAmount(args[1])
	if err != nil || qty < 0 {
		return fmt.Errorf("invalid quantity %q", args[1])
	}

	p, err := value(ctx, a.products.UpdateStock(ctx, id, qty, strings.Join(args[2:], " ")))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s: stock %s (%s)\n", p.Name, formatQty(p.Stock), p.StockStatus())
	return nil
}

func (a *app) listClients(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("clients", flag.ContinueOnError)
	search := fs.String("search", "", "name, email, phone or document")
	all := fs.Bool("all", false, "load every page")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	scope := screen.NewScope(ctx)
	defer scope.Close()

	st, err := loadList(scope, screen.NewClientsScreen(scope, a.clients, a.cfg.PageSize, model.ClientFilter{Search: *search}), *all)
	if err != nil {
		return err
	}
	printClients(a.out, st)
	return nil
}

func (a *app) listPaymentMethods(ctx context.Context) error {
	methods, err := value(ctx, a.methods.List(ctx))
	if err != nil {
		return err
	}
	printPaymentMethods(a.out, methods)
	return nil
}

func (a *app) listOrders(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("orders", flag.ContinueOnError)
	status := fs.String("status", "", "draft, completed or canceled")
	from := fs.String("from", "", "date from, YYYY-MM-DD")
	to := fs.String("to", "", "date to, YYYY-MM-DD")
	all := fs.Bool("all", false, "load every page")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	scope := screen.NewScope(ctx)
	defer scope.Close()

	s := screen.NewOrdersScreen(scope, a.orders, a.cfg.PageSize)
	f := model.OrderFilter{Status: model.OrderStatus(*status), DateFrom: *from, DateTo: *to}
	if !s.SetFilter(f) {
		return errors.New("orders screen closed")
	}

	st, err := drainList(scope, s.ListScreen, *all)
	if err != nil {
		return err
	}
	printOrders(a.out, st)
	return nil
}

func (a *app) orderCommand(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	sub, rest := args[0], args[1:]
	if sub == "create" {
		return a.createOrder(ctx, rest)
	}
	if len(rest) == 0 {
		return errUsage
	}
	id, err := parseID(rest[0])
	if err != nil {
		return err
	}

	scope := screen.NewScope(ctx)
	defer scope.Close()

	switch sub {
	case "show":
		s := screen.NewOrderDetailScreen(scope, a.orders, id)
		s.Load()
		scope.Wait()
		return a.printDetail(s.State())
	case "finalize":
		var pm *int64
		if len(rest) > 1 {
			v, err := parseID(rest[1])
			if err != nil {
				return err
			}
			pm = &v
		}
		s := screen.NewOrderDetailScreen(scope, a.orders, id)
		s.Finalize(pm)
		scope.Wait()
		return a.printDetail(s.State())
	case "cancel":
		s := screen.NewOrderDetailScreen(scope, a.orders, id)
		s.Cancel(strings.Join(rest[1:], " "))
		scope.Wait()
		return a.printDetail(s.State())
	case "update":
		return a.updateOrder(ctx, id, rest[1:])
	case "delete":
		s := screen.NewOrdersScreen(scope, a.orders, a.cfg.PageSize)
		s.Delete(id)
		scope.Wait()
		if msg := s.State().Error; msg != "" {
			return errors.New(msg)
		}
		fmt.Fprintf(a.out, "order %d deleted\n", id)
		return nil
	default:
		return errUsage
	}
}

func (a *app) printDetail(st screen.OrderDetailState) error {
	if st.Error != "" || st.Order == nil {
		return screenError(st.Error, "order not loaded")
	}
	printOrder(a.out, *st.Order)
	return nil
}

func (a *app) createOrder(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("order create", flag.ContinueOnError)
	finalize := fs.Bool("finalize", false, "complete the order right away")
	discount := fs.String("discount", "0", "discount amount")
	clientID := fs.Int64("client", 0, "client id")
	pay := fs.String("pay", string(model.PaymentCash), "payment method: cash, card, transfer or multiple")
	notes := fs.String("notes", "", "order notes")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	lines, err := parseLines(fs.Args())
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		return errUsage
	}
	discountAmount, err := parseAmount(*discount)
	if err != nil || discountAmount < 0 {
		return fmt.Errorf("invalid discount %q", *discount)
	}
	method, ok := model.ParsePaymentMethodKind(*pay)
	if !ok {
		return fmt.Errorf("unknown payment method %q", *pay)
	}

	scope := screen.NewScope(ctx)
	defer scope.Close()

	s := screen.NewCreateOrderScreen(scope, a.orders, a.products, a.strategy())
	for _, l := range lines {
		p, err := value(ctx, a.products.Get(ctx, l.productID))
		if err != nil {
			return fmt.Errorf("product %d: %w", l.productID, err)
		}
		if !p.AvailableForSale() {
			a.logger.Warn("adding product that is not available for sale")
			fmt.Fprintf(a.out, "warning: %s is not available for sale\n", p.Name)
		}
		s.AddProduct(p, l.quantity)
		if l.price != nil {
			s.UpdatePrice(p.ID, *l.price)
		}
	}
	if *clientID != 0 {
		c, err := value(ctx, a.clients.Get(ctx, *clientID))
		if err != nil {
			return fmt.Errorf("client %d: %w", *clientID, err)
		}
		s.SetClient(&c)
	}
	s.SetDiscount(discountAmount)
	s.SetPaymentMethod(method)
	s.SetNotes(*notes)

	printDraft(a.out, s.State().Draft)

	s.Submit(*finalize)
	scope.Wait()

	st := s.State()
	if st.Created != nil {
		printOrder(a.out, *st.Created)
		return nil
	}
	if st.Partial != nil {
		fmt.Fprintln(a.out, "order was saved partially:")
		printOrder(a.out, *st.Partial)
	}
	return screenError(st.Error, "order was not created")
}

// updateOrder меняет черновик. Заданные флаги заменяют поля заказа, позиции из аргументов заменяют все позиции.
func (a *app) updateOrder(ctx context.Context, id int64, args []string) error {
	fs := flag.NewFlagSet("order update", flag.ContinueOnError)
	discount := fs.String("discount", "", "discount amount")
	notes := fs.String("notes", "", "order notes")
	pay := fs.String("pay", "", "payment method: cash, card, transfer or multiple")
	clientID := fs.Int64("client", 0, "client id, 0 removes the client")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	o, err := value(ctx, a.orders.Get(ctx, id))
	if err != nil {
		return err
	}
	if !o.IsDraft() {
		return fmt.Errorf("order %s is %s, only drafts can be edited", o.OrderNumber, o.Status)
	}

	req := draftRequest(o)

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["discount"] {
		d, err := parseAmount(*discount)
		if err != nil || d < 0 {
			return fmt.Errorf("invalid discount %q", *discount)
		}
		req.Discount = &d
	}
	if set["notes"] {
		req.Notes = notes
	}
	if set["pay"] {
		m, ok := model.ParsePaymentMethodKind(*pay)
		if !ok {
			return fmt.Errorf("unknown payment method %q", *pay)
		}
		req.PaymentMethod = m
	}
	if set["client"] {
		req.ClientID, req.ClientName = nil, ""
		if *clientID != 0 {
			req.ClientID = clientID
		}
	}
	if fs.NArg() > 0 {
		lines, err := parseLines(fs.Args())
		if err != nil {
			return err
		}
		req.Items = make([]model.CreateOrderItemRequest, 0, len(lines))
		for _, l := range lines {
			req.Items = append(req.Items, model.CreateOrderItemRequest{ProductID: l.productID, Quantity: l.quantity, Price: l.price})
		}
	}

	updated, err := value(ctx, a.orders.Update(ctx, id, req))
	if err != nil {
		return err
	}
	printOrder(a.out, updated)
	return nil
}

// draftRequest переносит поля черновика с сервера в тело запроса изменения.
func draftRequest(o model.Order) model.CreateOrderRequest {
	notes, discount := o.Notes, o.Discount
	req := model.CreateOrderRequest{
		ClientID:      o.ClientID,
		ClientName:    o.ClientName,
		Notes:         &notes,
		Discount:      &discount,
		PaymentMethod: o.PaymentMethod,
		Status:        model.OrderStatusDraft,
		Items:         make([]model.CreateOrderItemRequest, 0, len(o.Items)),
	}
	for _, it := range o.Items {
		price := it.Price
		req.Items = append(req.Items, model.CreateOrderItemRequest{ProductID: it.ProductID, Quantity: it.Quantity, Price: &price})
	}
	return req
}

// line описывает позицию заказа из аргумента вида id[:qty[:price]].
type line struct {
	productID int64
	quantity  float64
	price     *float64
}

func parseLines(args []string) ([]line, error) {
	lines := make([]line, 0, len(args))
	for _, arg := range args {
		parts := strings.Split(arg, ":")
		if len(parts) > 3 {
			return nil, fmt.Errorf("invalid item %q", arg)
		}

		id, err := parseID(parts[0])
		if err != nil {
			return nil, err
		}
		l := line{productID: id, quantity: 1}

		if len(parts) > 1 && parts[1] != "" {
			if l.quantity, err = parseAmount(parts[1]); err != nil || l.quantity <= 0 {
				return nil, fmt.Errorf("invalid quantity in %q", arg)
			}
		}
		if len(parts) > 2 && parts[2] != "" {
			price, err := parseAmount(parts[2])
			if err != nil || price < 0 {
				return nil, fmt.Errorf("invalid price in %q", arg)
			}
			l.price = &price
		}
		lines = append(lines, l)
	}
	return lines, nil
}

// parseAmount разбирает число, отклоняя NaN и бесконечность.
func parseAmount(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return v, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

// loadList загружает первую страницу и при all дочитывает остальные.
func loadList[T, F any](scope *screen.Scope, l *screen.ListScreen[T, F], all bool) (screen.ListState[T], error) {
	if !l.Refresh() {
		return screen.ListState[T]{}, errors.New("list screen closed")
	}
	return drainList(scope, l, all)
}

func drainList[T, F any](scope *screen.Scope, l *screen.ListScreen[T, F], all bool) (screen.ListState[T], error) {
	scope.Wait()
	for all && l.State().Error == "" && l.NextPage() {
		scope.Wait()
	}

	st := l.State()
	if st.Error != "" {
		return st, errors.New(st.Error)
	}
	return st, nil
}

// value дожидается последнего состояния потока и возвращает значение или ошибку с текстом для пользователя.
func value[T any](ctx context.Context, s resource.Stream[T]) (T, error) {
	switch r := resource.Last(ctx, s).(type) {
	case resource.Success[T]:
		return r.Value, nil
	case resource.Error[T]:
		return *new(T), screenError(r.Message, "request failed")
	default:
		if err := ctx.Err(); err != nil {
			return *new(T), errors.New(repository.Message(err, "request interrupted"))
		}
		return *new(T), errors.New("request interrupted")
	}
}

func screenError(msg, fallback string) error {
	if msg == "" {
		msg = fallback
	}
	return errors.New(msg)
}
