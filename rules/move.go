package rules

// ApplyMove plays color at c on p and returns the resulting position.
//
// A pass is always legal. Otherwise the move is rejected with a *MoveError
// wrapping ErrOutOfBounds, ErrOccupied or ErrSuicide. Opponent groups left
// without liberties are captured before suicide is checked, so a move that
// captures is never suicide. Ko is not checked here; see CheckKo and
// PlayMove.
//
// p is never modified.
func ApplyMove(p *Position, color Color, c Cell) (*Position, error) {
	if !color.Valid() {
		return nil, &MoveError{Kind: ErrInvalidColor, Color: color, Cell: c}
	}

	if c.IsPass() {
		next := p.child()
		next.lastMove = Pass
		next.hasLastMove = true
		next.lastPlayer = color
		next.nextToMove = color.Opponent()
		return next, nil
	}

	if !p.IsOnBoard(c) {
		return nil, &MoveError{Kind: ErrOutOfBounds, Color: color, Cell: c}
	}
	if _, taken := p.stones[c]; taken {
		return nil, &MoveError{Kind: ErrOccupied, Color: color, Cell: c}
	}

	next := p.child()
	next.put(c, color)

	opponent := color.Opponent()
	captured := 0
	for _, n := range p.Neighbors(c) {
		if next.stones[n] != opponent {
			continue
		}
		// An earlier neighbor may already have removed this group.
		if hasLiberty(next, n, opponent) {
			continue
		}
		stones, _ := flood(next, n, opponent)
		for _, s := range stones {
			next.remove(s)
		}
		captured += len(stones)
	}

	if captured == 0 && !hasLiberty(next, c, color) {
		return nil, &MoveError{Kind: ErrSuicide, Color: color, Cell: c}
	}

	if color == White {
		next.whiteCaptures += captured
	} else {
		next.blackCaptures += captured
	}
	next.lastMove = c
	next.hasLastMove = true
	next.lastPlayer = color
	next.nextToMove = opponent
	return next, nil
}

// IsLegal reports whether color may play c on p under the given ko rule.
func IsLegal(p *Position, color Color, c Cell, rule KoRule) bool {
	_, err := PlayMove(p, color, c, rule)
	return err == nil
}

// LegalMoves returns every non-pass move color may play on p under the
// given ko rule, in row order.
func LegalMoves(p *Position, color Color, rule KoRule) []Cell {
	var out []Cell
	for y := 0; y < p.height; y++ {
		for x := 0; x < p.width; x++ {
			c := Cell{x, y}
			if _, taken := p.stones[c]; taken {
				continue
			}
			if IsLegal(p, color, c, rule) {
				out = append(out, c)
			}
		}
	}
	return out
}
