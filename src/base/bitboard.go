package base

// Bitboard rows come from the engine one byte per rank, first rank first.
// Bit i of a row marks file i. Rows are reversed when mapped to client ranks.

func DecodeBitboardRows(rows [8]uint8) []Square {
	var sqs []Square
	for row, bits := range rows {
		for file := 0; file < 8; file++ {
			if (bits>>file)&0x01 != 0 {
				sqs = append(sqs, Square{File: file, Rank: 7 - row})
			}
		}
	}
	return sqs
}

func EncodeBitboardRows(sqs []Square) [8]uint8 {
	var rows [8]uint8
	for _, sq := range sqs {
		if !sq.Valid() {
			continue
		}
		rows[7-sq.Rank] |= 1 << sq.File
	}
	return rows
}
