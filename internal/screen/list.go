package screen

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/mmeshcher/gestior/internal/model"
	"github.com/mmeshcher/gestior/internal/resource"
)

// ListState описывает состояние постраничного списка.
type ListState[T any] struct {
	Items    []T
	Page     int
	LastPage int
	Total    int
	HasMore  bool
	Loading  bool
	Error    string
}

// FoldPage применяет состояние загрузки страницы page к списку.
// Первая страница заменяет элементы, следующие дописываются в конец. Ошибка не трогает данные.
func FoldPage[T any](st ListState[T], page int, r resource.Resource[model.Page[T]]) ListState[T] {
	switch r := r.(type) {
	case resource.Loading[model.Page[T]]:
		st.Loading = true
		if page <= 1 {
			st.Error = ""
		}
	case resource.Success[model.Page[T]]:
		p := r.Value
		if page <= 1 {
			st.Items = append([]T(nil), p.Items...)
		} else {
			items := make([]T, 0, len(st.Items)+len(p.Items))
			items = append(items, st.Items...)
			st.Items = append(items, p.Items...)
		}
		st.Page = p.CurrentPage
		if st.Page == 0 {
			st.Page = page
		}
		st.LastPage = p.LastPage
		st.Total = p.Total
		st.HasMore = p.HasMore()
		st.Loading = false
		st.Error = ""
	case resource.Error[model.Page[T]]:
		st.Loading = false
		st.Error = r.Message
	}
	return st
}

// Lister загружает страницу списка с фильтром F.
type Lister[T, F any] func(ctx context.Context, page, perPage int, f F) resource.Stream[model.Page[T]]

// ListScreen показывает постраничный список.
type ListScreen[T, F any] struct {
	scope   *Scope
	store   *Store[ListState[T]]
	list    Lister[T, F]
	perPage int

	mu     sync.Mutex
	filter F
	gen    atomic.Uint64
}

// NewListScreen создаёт экран списка. Загрузка начинается с вызова Refresh.
func NewListScreen[T, F any](scope *Scope, list Lister[T, F], perPage int, filter F) *ListScreen[T, F] {
	if perPage <= 0 {
		perPage = 20
	}
	return &ListScreen[T, F]{
		scope:   scope,
		store:   NewStore(scope, ListState[T]{}),
		list:    list,
		perPage: perPage,
		filter:  filter,
	}
}

// State возвращает снимок состояния.
func (l *ListScreen[T, F]) State() ListState[T] { return l.store.Get() }

// Observe подписывает fn на изменения состояния.
func (l *ListScreen[T, F]) Observe(fn func(ListState[T])) { l.store.Observe(fn) }

// Filter возвращает текущий фильтр.
func (l *ListScreen[T, F]) Filter() F {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.filter
}

// SetFilter меняет фильтр и перезагружает список с первой страницы.
func (l *ListScreen[T, F]) SetFilter(f F) bool {
	l.mu.Lock()
	l.filter = f
	l.mu.Unlock()
	return l.Refresh()
}

// Refresh загружает первую страницу. Результаты предыдущих загрузок после этого игнорируются.
func (l *ListScreen[T, F]) Refresh() bool {
	if !l.store.Update(func(st ListState[T]) ListState[T] {
		st.Loading = true
		st.Error = ""
		return st
	}) {
		return false
	}
	return l.load(1)
}

// NextPage загружает следующую страницу, если она есть и загрузка не идёт.
func (l *ListScreen[T, F]) NextPage() bool {
	next := 0
	l.store.Update(func(st ListState[T]) ListState[T] {
		if st.Loading || !st.HasMore {
			return st
		}
		next = st.Page + 1
		st.Loading = true
		return st
	})
	if next == 0 {
		return false
	}
	return l.load(next)
}

// ClearError скрывает показанную ошибку.
func (l *ListScreen[T, F]) ClearError() {
	l.store.Update(func(st ListState[T]) ListState[T] {
		st.Error = ""
		return st
	})
}

// Remove убирает из списка элементы, для которых match возвращает true.
func (l *ListScreen[T, F]) Remove(match func(T) bool) {
	l.store.Update(func(st ListState[T]) ListState[T] {
		items := make([]T, 0, len(st.Items))
		removed := 0
		for _, it := range st.Items {
			if match(it) {
				removed++
				continue
			}
			items = append(items, it)
		}
		st.Items = items
		st.Total -= removed
		if st.Total < 0 {
			st.Total = 0
		}
		return st
	})
}

func (l *ListScreen[T, F]) setError(msg string) {
	l.store.Update(func(st ListState[T]) ListState[T] {
		st.Error = msg
		return st
	})
}

func (l *ListScreen[T, F]) load(page int) bool {
	gen := l.gen.Add(1)
	filter := l.Filter()

	return consume(l.scope, func(ctx context.Context) resource.Stream[model.Page[T]] {
		return l.list(ctx, page, l.perPage, filter)
	}, func(r resource.Resource[model.Page[T]]) {
		l.store.Update(func(st ListState[T]) ListState[T] {
			if l.gen.Load() != gen {
				return st
			}
			return FoldPage(st, page, r)
		})
	})
}
