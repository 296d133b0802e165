package chess

// CountMaterial sums StandardPieceValues for each side on b.
func CountMaterial(b *Board) MaterialCount {
	var mc MaterialCount
	for r := range b {
		for _, p := range b[r] {
			if p.IsZero() {
				continue
			}
			if p.Color == White {
				mc.White += StandardPieceValues[p.Type]
			} else {
				mc.Black += StandardPieceValues[p.Type]
			}
		}
	}
	return mc
}

// Balance is white's material minus black's.
func (mc MaterialCount) Balance() int {
	return mc.White - mc.Black
}
