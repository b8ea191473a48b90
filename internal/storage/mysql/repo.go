package mysql

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"review_compare/internal/domain"
	"review_compare/internal/textutil"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

// likeContains builds a LIKE pattern matching s anywhere, escaping wildcards.
func likeContains(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) UpsertReviews(ctx context.Context, rs []domain.Review) error {
	if len(rs) == 0 {
		return nil
	}
	values := make([]string, 0, len(rs))
	args := make([]any, 0, len(rs)*10)
	for _, rv := range rs {
		if rv.SourceID == nil {
			return errors.New("mysql: review without source id")
		}
		values = append(values, "(?,?,?,?,?,?,?,?,?,?)")
		args = append(args,
			rv.Product,
			textutil.Key(rv.Product),
			valStr(rv.Category),
			*rv.SourceID,
			rv.Text,
			valInt(rv.Rating),
			valF64(rv.SentimentScore),
			valStr(rv.Aspect),
			string(rv.Lang()),
			valStr(rv.Source),
		)
	}
	sqlStr := insertReviewsPrefix + strings.Join(values, ",") + insertReviewsOnDup
	_, err := r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *Repo) LogMiss(ctx context.Context, product, reason string) error {
	_, err := r.db.ExecContext(ctx, insertMissSQL, textutil.Key(product), reason)
	return err
}

// Fetch returns the reviews of every product whose name contains product,
// ignoring case.
func (r *Repo) Fetch(ctx context.Context, product string) (domain.SourceResult, error) {
	q := textutil.Key(product)
	if q == "" {
		return domain.SourceResult{}, nil
	}
	rows, err := r.db.QueryContext(ctx, fetchReviewsSQL, likeContains(q))
	if err != nil {
		return domain.SourceResult{}, err
	}
	defer rows.Close()

	var out []domain.Review
	for rows.Next() {
		var rv domain.Review
		var (
			category, aspect, source sql.NullString
			sourceID                 string
			rating                   sql.NullInt64
			score                    sql.NullFloat64
			lang                     string
		)
		if err := rows.Scan(&rv.ID, &rv.Product, &category, &sourceID, &rv.Text,
			&rating, &score, &aspect, &lang, &source); err != nil {
			return domain.SourceResult{}, err
		}
		rv.SourceID = &sourceID
		rv.Language = domain.Language(lang)
		if category.Valid {
			s := category.String
			rv.Category = &s
		}
		if rating.Valid {
			n := int(rating.Int64)
			rv.Rating = &n
		}
		if score.Valid {
			f := score.Float64
			rv.SentimentScore = &f
		}
		if aspect.Valid {
			s := aspect.String
			rv.Aspect = &s
		}
		if source.Valid {
			s := source.String
			rv.Source = &s
		}
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return domain.SourceResult{}, err
	}
	return domain.SourceResult{Found: len(out) > 0, Reviews: out}, nil
}

func (r *Repo) Products(ctx context.Context, category string) ([]string, error) {
	return r.column(ctx, listProductsSQL, category, category)
}

func (r *Repo) Categories(ctx context.Context) ([]string, error) {
	return r.column(ctx, listCategoriesSQL)
}

func (r *Repo) Search(ctx context.Context, q, category string) ([]string, error) {
	return r.column(ctx, searchProductsSQL, likeContains(textutil.Key(q)), category, category)
}

func (r *Repo) Category(ctx context.Context, product string) (string, error) {
	q := textutil.Key(product)
	if q == "" {
		return "", domain.ErrNotFound
	}
	var cat string
	if err := r.db.QueryRowContext(ctx, productCategorySQL, likeContains(q)).Scan(&cat); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", err
	}
	return cat, nil
}

// column runs a single-column query.
func (r *Repo) column(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
