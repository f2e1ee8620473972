package domain

// Passage is an embedded chunk of a document.
type Passage struct {
	Identity string
	Source   string
	Index    int
	Content  string
	Vector   []float32
}

// Hit is one ranked retrieval result. Higher Score is more similar.
type Hit struct {
	Identity string
	Source   string
	Index    int
	Content  string
	Score    float64
}
