package querytree

import bquery "github.com/blevesearch/bleve/v2/search/query"

// Boost wraps a query with a weighting factor. It is semantically
// equivalent to its inner query for matching purposes (§3): ToAST passes
// straight through, and only ToBleve applies the weight, for callers who
// care about ranking (this service does not rank matches).
type Boost struct {
	Inner  Query
	Factor float64
}

func (b *Boost) ToAST() QueryDocumentTree {
	return b.Inner.ToAST()
}

// boostSetter is implemented by bleve's leaf query types.
type boostSetter interface {
	SetBoost(b float64)
}

func (b *Boost) ToBleve() (bquery.Query, error) {
	inner, err := b.Inner.ToBleve()
	if err != nil {
		return nil, err
	}
	if bs, ok := inner.(boostSetter); ok {
		bs.SetBoost(b.Factor)
	}
	return inner, nil
}

func (b *Boost) Clone() Query {
	return &Boost{Inner: b.Inner.Clone(), Factor: b.Factor}
}
