package item

import (
	"github.com/kailas-cloud/veritas/internal/domain/article"
	"github.com/kailas-cloud/veritas/internal/domain/explanation"
	"github.com/kailas-cloud/veritas/internal/domain/verdict"
)

// Placement is the batch-level cluster assignment of one item.
// Coord is nil when the batch had no 2-D projection.
type Placement struct {
	Cluster int
	Coord   *[2]float64
}

// Item is one processed search result (ResultItem).
// It is created once per surviving hit; WithPlacement returns a copy.
type Item struct {
	doc         article.Document
	verdict     verdict.Verdict
	explanation explanation.Explanation
	recencyDays int
	recencyOK   bool
	placement   *Placement
}

// New creates an Item. recencyOK=false marks an unknown publication age.
func New(
	doc article.Document,
	v verdict.Verdict,
	exp explanation.Explanation,
	recencyDays int,
	recencyOK bool,
) Item {
	if !recencyOK {
		recencyDays = 0
	}
	return Item{
		doc:         doc,
		verdict:     v,
		explanation: exp,
		recencyDays: recencyDays,
		recencyOK:   recencyOK,
	}
}

// Document returns the scored document.
func (i Item) Document() article.Document { return i.doc }

// Verdict returns the classification result.
func (i Item) Verdict() verdict.Verdict { return i.verdict }

// Trust is a shortcut for Verdict().Trust().
func (i Item) Trust() float64 { return i.verdict.Trust() }

// Explanation returns the top contributing features.
func (i Item) Explanation() explanation.Explanation { return i.explanation }

// RecencyDays returns elapsed days since publication, if known.
func (i Item) RecencyDays() (int, bool) { return i.recencyDays, i.recencyOK }

// Placement returns the cluster assignment, if the batch was clustered.
func (i Item) Placement() (Placement, bool) {
	if i.placement == nil {
		return Placement{}, false
	}
	p := *i.placement
	if p.Coord != nil {
		c := *p.Coord
		p.Coord = &c
	}
	return p, true
}

// WithPlacement returns a copy of the item with the cluster assignment attached.
func (i Item) WithPlacement(p Placement) Item {
	if p.Coord != nil {
		c := *p.Coord
		p.Coord = &c
	}
	i.placement = &p
	return i
}
