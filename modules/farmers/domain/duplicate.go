package domain

// DuplicatePairRecord is the wire shape of one potential-duplicate match.
type DuplicatePairRecord struct {
	Primary    FarmerRecord `json:"primary"`
	Secondary  FarmerRecord `json:"secondary"`
	Similarity float64      `json:"similarity"`
}

// DuplicatePair holds two farmers the backend flagged as likely the same
// person, with the match score in [0,1]. Resolution keeps one side; the
// backend owns the merge.
type DuplicatePair struct {
	Primary    Farmer
	Secondary  Farmer
	Similarity float64
}

// Key identifies a pair by both member ids.
func (p DuplicatePair) Key() string {
	return p.Primary.ID + "/" + p.Secondary.ID
}

func MapDuplicatePair(r DuplicatePairRecord) DuplicatePair {
	return DuplicatePair{
		Primary:    MapFarmer(r.Primary),
		Secondary:  MapFarmer(r.Secondary),
		Similarity: r.Similarity,
	}
}
