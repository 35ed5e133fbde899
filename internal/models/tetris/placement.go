package tetris

import (
	"errors"
	"fmt"
)

// ErrNoLegalPlacement はピースをボードに置けないことを表します。
var ErrNoLegalPlacement = errors.New("no legal placement")

// Placement は Attempt の結果です。Landed が false の場合 Row は意味を持ちません。
type Placement struct {
	Landed bool `json:"landed"`
	Row    int  `json:"row"`
}

// Landing はピースを固定してラインを消去した結果です。
type Landing struct {
	Row     int `json:"row"`
	Cleared int `json:"cleared"`
}

// Attempt はピースの着地位置を求めます。ボードは変更しません。
// Offset が [1, MaxOffset] の範囲外なら落下判定の前に拒否します。
func Attempt(b *Board, p Piece) Placement {
	if !p.InBounds() {
		return Placement{}
	}
	row, ok := b.Fits(&p)
	if !ok {
		return Placement{}
	}
	return Placement{Landed: true, Row: row}
}

// Simulate はボードのコピーにピースを固定した盤面を返します。ラインは消去しません。
func Simulate(b *Board, p Piece) (Board, Placement) {
	sim := b.Clone()
	placement := Attempt(&sim, p)
	if placement.Landed {
		sim.Commit(&p, placement.Row)
	}
	return sim, placement
}

// Place はピースを落下させて固定し、揃ったラインを消去します。
// 置けない場合はボードを変更せずに ErrNoLegalPlacement を返します。
func Place(b *Board, p Piece) (Landing, error) {
	placement := Attempt(b, p)
	if !placement.Landed {
		return Landing{}, fmt.Errorf("%s at offset %d rotation %d: %w", p.Type, p.Offset, p.Rotation, ErrNoLegalPlacement)
	}
	b.Commit(&p, placement.Row)
	return Landing{Row: placement.Row, Cleared: b.ClearLines()}, nil
}
