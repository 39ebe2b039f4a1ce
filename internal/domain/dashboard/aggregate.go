// Package dashboard resume un conjunto de claims: conteos por status, recientes y
// tendencia mensual. Son funciones puras; el handler les pasa los claims ya filtrados
// por la política de acceso.
package dashboard

import (
	"sort"
	"time"

	"claims-review/internal/domain/claims"
)

const (
	DefaultRecentLimit = 5
	DefaultTrendMonths = 6
)

type Counts struct {
	Pending  int `json:"pending"`
	InReview int `json:"inReview"`
	Approved int `json:"approved"`
	Denied   int `json:"denied"`
	Archived int `json:"archived"`
	Total    int `json:"total"`
}

func (c *Counts) add(s claims.Status) {
	switch s {
	case claims.StatusPending:
		c.Pending++
	case claims.StatusInReview:
		c.InReview++
	case claims.StatusApproved:
		c.Approved++
	case claims.StatusDenied:
		c.Denied++
	case claims.StatusArchived:
		c.Archived++
	}
	c.Total++
}

// StatusCounts cuenta por status. Total == len(items).
func StatusCounts(items []claims.Claim) Counts {
	var c Counts
	for _, it := range items {
		c.add(it.Status)
	}
	return c
}

// RecentClaims devuelve los limit claims con updated_at más reciente. En empate se
// respeta el orden de entrada. No modifica items.
func RecentClaims(items []claims.Claim, limit int) []claims.Claim {
	if limit < 0 {
		limit = 0
	}
	sorted := make([]claims.Claim, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].UpdatedAt.After(sorted[j].UpdatedAt)
	})
	if limit > len(sorted) {
		limit = len(sorted)
	}
	return sorted[:limit]
}

// MonthBucket: conteos por status de los claims creados en un mes calendario (UTC).
// Label es "2025-03"; Name es "Mar", para el eje del gráfico.
type MonthBucket struct {
	Year   int        `json:"year"`
	Month  time.Month `json:"month"`
	Label  string     `json:"label"`
	Name   string     `json:"name"`
	Counts Counts     `json:"counts"`
}

func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func newBucket(m time.Time) MonthBucket {
	return MonthBucket{
		Year:  m.Year(),
		Month: m.Month(),
		Label: m.Format("2006-01"),
		Name:  m.Format("Jan"),
	}
}

// buckets arma meses contiguos [from, to] y asigna cada claim por created_at.
// Claims fuera del rango se ignoran.
func buckets(items []claims.Claim, from, to time.Time) []MonthBucket {
	out := make([]MonthBucket, 0)
	index := make(map[string]int)
	for m := from; !m.After(to); m = m.AddDate(0, 1, 0) {
		b := newBucket(m)
		index[b.Label] = len(out)
		out = append(out, b)
	}
	for _, c := range items {
		i, ok := index[monthStart(c.CreatedAt).Format("2006-01")]
		if !ok {
			continue
		}
		out[i].Counts.add(c.Status)
	}
	return out
}

// MonthlyTrend cubre desde el mes del claim más viejo hasta el del más nuevo, sin
// huecos (meses sin claims quedan en cero). Sin claims devuelve vacío.
func MonthlyTrend(items []claims.Claim) []MonthBucket {
	if len(items) == 0 {
		return []MonthBucket{}
	}
	from := monthStart(items[0].CreatedAt)
	to := from
	for _, c := range items[1:] {
		m := monthStart(c.CreatedAt)
		if m.Before(from) {
			from = m
		}
		if m.After(to) {
			to = m
		}
	}
	return buckets(items, from, to)
}

// MonthlyTrendWindow devuelve exactamente months meses terminando en el mes de end.
// Con poca historia los meses quedan en cero; no se inventan datos.
func MonthlyTrendWindow(items []claims.Claim, end time.Time, months int) []MonthBucket {
	if months <= 0 {
		return []MonthBucket{}
	}
	to := monthStart(end)
	from := to.AddDate(0, -(months - 1), 0)
	return buckets(items, from, to)
}

type Summary struct {
	Counts Counts         `json:"counts"`
	Recent []claims.Claim `json:"-"`
	Trend  []MonthBucket  `json:"trend"`
}

func Summarize(items []claims.Claim, now time.Time) Summary {
	return Summary{
		Counts: StatusCounts(items),
		Recent: RecentClaims(items, DefaultRecentLimit),
		Trend:  MonthlyTrendWindow(items, now, DefaultTrendMonths),
	}
}
