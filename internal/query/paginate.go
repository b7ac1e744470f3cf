package query

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carhive/carhive/internal/platform/db"
	"github.com/carhive/carhive/internal/platform/httpx"
)

const (
	// DefaultPage is used when the caller omits the page parameter.
	DefaultPage = 1
	// DefaultPerPage is used when the caller omits the per_page parameter.
	DefaultPerPage = 10
	// MaxPerPage bounds the window size a client may request; the limit also
	// feeds the result preallocation in Run.
	MaxPerPage = 100
)

// Params carries the pagination, sorting and filtering inputs of a listing.
type Params struct {
	Page    int
	PerPage int
	SortBy  string
	Filters string
}

// ParamsFromRequest reads listing parameters from the request query string,
// applying defaults for omitted values. Malformed numbers surface through
// Validate, not here.
func ParamsFromRequest(r *http.Request) Params {
	p := Params{Page: DefaultPage, PerPage: DefaultPerPage}
	q := r.URL.Query()
	if raw := q.Get("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			p.Page = n
		} else {
			p.Page = 0
		}
	}
	if raw := q.Get("per_page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			p.PerPage = n
		} else {
			p.PerPage = 0
		}
	}
	p.SortBy = q.Get("sort_by")
	p.Filters = q.Get("filters")
	return p
}

// Validate rejects non-positive page values and per_page values outside
// [1, MaxPerPage].
func (p Params) Validate() error {
	if p.Page < 1 {
		return fmt.Errorf("%w: page must be >= 1", httpx.ErrValidation)
	}
	if p.PerPage < 1 {
		return fmt.Errorf("%w: per_page must be >= 1", httpx.ErrValidation)
	}
	if p.PerPage > MaxPerPage {
		return fmt.Errorf("%w: per_page must be <= %d", httpx.ErrValidation, MaxPerPage)
	}
	return nil
}

// Meta carries page envelope metadata.
type Meta struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// NewMeta computes envelope metadata for a filtered total.
func NewMeta(page, perPage, total int) Meta {
	return Meta{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: int(math.Ceil(float64(total) / float64(perPage))),
	}
}

// Page is the listing envelope returned to callers.
type Page[T any] struct {
	Data []T  `json:"data"`
	Meta Meta `json:"meta"`
}

// Base describes the record set a listing pages over, already scoped to its
// parent by the caller (e.g. "models of brand 7").
type Base struct {
	// SelectSQL is the projection and FROM clause, including any joins.
	SelectSQL string
	// CountSQL counts the same record set, including any joins.
	CountSQL string
	// Where holds the scoping condition using placeholders $1..$len(Args),
	// or "" for an unscoped set.
	Where string
	// Args are the scoping arguments referenced by Where.
	Args []any
}

// Compiled is the pair of executable statements for one listing request.
type Compiled struct {
	SelectSQL string
	CountSQL  string
	// Args feed both statements; the window statement additionally receives
	// limit and offset as its two trailing placeholders.
	Args       []any
	SelectArgs []any
}

// Build compiles the filter and sort expressions against the field registry
// and assembles the count and window statements.
func Build(base Base, fields FieldSet, p Params) (Compiled, error) {
	if err := p.Validate(); err != nil {
		return Compiled{}, err
	}

	args := make([]any, len(base.Args))
	copy(args, base.Args)

	var conds []string
	if base.Where != "" {
		conds = append(conds, base.Where)
	}
	for _, pred := range CompileFilters(fields, p.Filters) {
		args = append(args, pred.Value)
		conds = append(conds, pred.SQL(len(args)))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	countSQL := base.CountSQL + where

	selectSQL := base.SelectSQL + where
	if order := OrderBy(CompileSort(fields, p.SortBy)); order != "" {
		selectSQL += " ORDER BY " + order
	}

	selectArgs := make([]any, len(args), len(args)+2)
	copy(selectArgs, args)
	selectArgs = append(selectArgs, p.PerPage, (p.Page-1)*p.PerPage)
	selectSQL += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)

	return Compiled{
		SelectSQL:  selectSQL,
		CountSQL:   countSQL,
		Args:       args,
		SelectArgs: selectArgs,
	}, nil
}

// Run executes a paginated listing. The count and the window run inside one
// read-only RepeatableRead transaction so total_items reflects the same
// snapshot the returned page was cut from.
func Run[T any](ctx context.Context, pool *pgxpool.Pool, base Base, fields FieldSet, p Params, scan func(pgx.Rows) (T, error)) (Page[T], error) {
	compiled, err := Build(base, fields, p)
	if err != nil {
		return Page[T]{}, err
	}

	items := make([]T, 0, p.PerPage)
	var total int

	err = db.ReadTx(ctx, pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, compiled.CountSQL, compiled.Args...).Scan(&total); err != nil {
			return fmt.Errorf("query: count: %w", err)
		}

		rows, err := tx.Query(ctx, compiled.SelectSQL, compiled.SelectArgs...)
		if err != nil {
			return fmt.Errorf("query: window: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			item, err := scan(rows)
			if err != nil {
				return fmt.Errorf("query: scan: %w", err)
			}
			items = append(items, item)
		}
		return rows.Err()
	})
	if err != nil {
		return Page[T]{}, err
	}

	return Page[T]{Data: items, Meta: NewMeta(p.Page, p.PerPage, total)}, nil
}
