package book

// Book sides as persisted in the side column.
const (
	SideBid = "BID"
	SideAsk = "ASK"
)

// Level is a single price/quantity pair on one side of the book.
type Level struct {
	Price    float64
	Quantity int64
}

// PriceLevel is one persisted book-level row as served to readers.
type PriceLevel struct {
	Price    float64
	Quantity int64
	Side     string
}
