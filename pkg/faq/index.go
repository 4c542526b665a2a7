package faq

import "math"

// Index is a TF-IDF model over a fixed set of documents. Term weights are
// raw counts times smoothed idf, ln((1+n)/(1+df)) + 1, and every row is
// L2-normalised so a dot product is the cosine similarity.
type Index struct {
	vocab map[string]int
	idf   []float64
	rows  []sparse
}

type sparse map[int]float64

func NewIndex(docs [][]string) *Index {
	idx := &Index{vocab: make(map[string]int)}

	df := []int{}
	for _, doc := range docs {
		seen := make(map[int]bool)
		for _, term := range doc {
			id, ok := idx.vocab[term]
			if !ok {
				id = len(idx.vocab)
				idx.vocab[term] = id
				df = append(df, 0)
			}
			if !seen[id] {
				seen[id] = true
				df[id]++
			}
		}
	}

	n := float64(len(docs))
	idx.idf = make([]float64, len(df))
	for id, d := range df {
		idx.idf[id] = math.Log((1+n)/(1+float64(d))) + 1
	}

	idx.rows = make([]sparse, len(docs))
	for i, doc := range docs {
		idx.rows[i] = idx.vectorize(doc)
	}
	return idx
}

func (idx *Index) Len() int { return len(idx.rows) }

// vectorize weights doc against the index vocabulary; unknown terms are
// ignored.
func (idx *Index) vectorize(doc []string) sparse {
	v := make(sparse)
	for _, term := range doc {
		if id, ok := idx.vocab[term]; ok {
			v[id]++
		}
	}
	var norm float64
	for id, tf := range v {
		w := tf * idx.idf[id]
		v[id] = w
		norm += w * w
	}
	if norm == 0 {
		return v
	}
	norm = math.Sqrt(norm)
	for id := range v {
		v[id] /= norm
	}
	return v
}

// Similarities returns the cosine similarity of query to every document, in
// document order.
func (idx *Index) Similarities(query []string) []float64 {
	q := idx.vectorize(query)
	out := make([]float64, len(idx.rows))
	for i, row := range idx.rows {
		var dot float64
		for id, w := range q {
			dot += w * row[id]
		}
		out[i] = dot
	}
	return out
}

// Best returns the index and score of the most similar document. Ties go to
// the earliest document; an empty index returns -1.
func (idx *Index) Best(query []string) (int, float64) {
	best, score := -1, 0.0
	for i, s := range idx.Similarities(query) {
		if best == -1 || s > score {
			best, score = i, s
		}
	}
	return best, score
}
