package tetris

import (
	"strings"
)

const (
	BoardWidth  = 10 // テトリスボードの幅
	BoardHeight = 20 // テトリスボードの高さ
)

// Cell はボード上の1マスの状態です。
type Cell int

const (
	CellEmpty    Cell = iota // 0: 空のマス
	CellOccupied             // 1: 埋まっているマス
)

// Board はテトリスのゲームボードを表す2次元配列です。
// Board[row][col] でアクセスし、row 0 が最下段です。
// 配列なので代入するだけで複製されます。
type Board [BoardHeight][BoardWidth]Cell

// Stats はボードの評価値です。(Peak, Holes) の辞書順で小さいほど良い盤面です。
type Stats struct {
	Peak  int `json:"peak"`  // 最も高い埋まったマスの行 (空のボードでは0)
	Holes int `json:"holes"` // 上に埋まったマスがある空きマスの数
}

// Less は s が other より良い (辞書順で小さい) 場合にtrueを返します。
func (s Stats) Less(other Stats) bool {
	if s.Peak != other.Peak {
		return s.Peak < other.Peak
	}
	return s.Holes < other.Holes
}

// NewBoard は新しい空のボードを返します。
func NewBoard() Board {
	var board Board
	return board
}

// Clone はボードのコピーを返します。
func (b *Board) Clone() Board {
	return *b
}

// IsOccupied は指定されたマスが埋まっているかどうかを返します。
// 範囲外の座標で呼び出してはいけません。
func (b *Board) IsOccupied(row, col int) bool {
	return b[row][col] == CellOccupied
}

// canOccupy はピースの最下段を row に置いたとき、全ブロックが
// ボード内の空きマスに収まるかどうかを判定します。
func (b *Board) canOccupy(p *Piece, row int) bool {
	for _, block := range p.Blocks() {
		x := p.Offset - 1 + block[0]
		y := row + block[1]
		if x < 0 || x >= BoardWidth || y < 0 || y >= BoardHeight {
			return false
		}
		if b[y][x] != CellEmpty {
			return false
		}
	}
	return true
}

// Fits はピースを真上から落としたときに止まる行 (ピースの最下段の行) を返します。
// 最上段の位置ですでに衝突する場合はfalseを返します。
//
// Parameters:
//
//	p : 落下させるピース
//
// Returns:
//
//	int  : 着地する行
//	bool : 置ける場合はtrue
func (b *Board) Fits(p *Piece) (int, bool) {
	row := BoardHeight - p.Height()
	if row < 0 || !b.canOccupy(p, row) {
		return 0, false
	}
	for row > 0 && b.canOccupy(p, row-1) {
		row--
	}
	return row, true
}

// Commit はピースのブロックを row を基準にボードへ固定します。
// Fits で検証済みの (p, row) でのみ呼び出してください。再検証は行いません。
func (b *Board) Commit(p *Piece, row int) {
	for _, block := range p.Blocks() {
		b[row+block[1]][p.Offset-1+block[0]] = CellOccupied
	}
}

func (b *Board) isLineFull(row int) bool {
	for x := 0; x < BoardWidth; x++ {
		if b[row][x] == CellEmpty {
			return false
		}
	}
	return true
}

// ClearLines は揃ったラインを消去し、上の行を1段ずつ落とします。
// 消去した行には上の行が入ってくるため、同じ行を再判定してから次へ進みます。
//
// Returns:
//
//	int: クリアされたライン数
func (b *Board) ClearLines() int {
	cleared := 0
	row := 0
	for row < BoardHeight {
		if !b.isLineFull(row) {
			row++
			continue
		}
		copy(b[row:], b[row+1:])
		b[BoardHeight-1] = [BoardWidth]Cell{}
		cleared++
	}
	return cleared
}

// Stats は現在のボードから評価値を計算します。
func (b *Board) Stats() Stats {
	var stats Stats
	for y := BoardHeight - 1; y >= 0; y-- {
		if b.rowHasBlocks(y) {
			stats.Peak = y
			break
		}
	}
	for x := 0; x < BoardWidth; x++ {
		covered := false
		for y := BoardHeight - 1; y >= 0; y-- {
			if b[y][x] == CellOccupied {
				covered = true
			} else if covered {
				stats.Holes++
			}
		}
	}
	return stats
}

func (b *Board) rowHasBlocks(row int) bool {
	for x := 0; x < BoardWidth; x++ {
		if b[row][x] == CellOccupied {
			return true
		}
	}
	return false
}

// OccupiedCount は埋まっているマスの総数を返します。
func (b *Board) OccupiedCount() int {
	count := 0
	for y := 0; y < BoardHeight; y++ {
		for x := 0; x < BoardWidth; x++ {
			if b[y][x] == CellOccupied {
				count++
			}
		}
	}
	return count
}

// Rows はボードを上の行から順に "#" と " " の文字列で返します。
func (b *Board) Rows() []string {
	rows := make([]string, 0, BoardHeight)
	var sb strings.Builder
	for y := BoardHeight - 1; y >= 0; y-- {
		sb.Reset()
		for x := 0; x < BoardWidth; x++ {
			if b[y][x] == CellOccupied {
				sb.WriteByte('#')
			} else {
				sb.WriteByte(' ')
			}
		}
		rows = append(rows, sb.String())
	}
	return rows
}

// String はデバッグログ用にボードを枠付きで描画します。
func (b *Board) String() string {
	var sb strings.Builder
	for _, row := range b.Rows() {
		sb.WriteString("|")
		sb.WriteString(row)
		sb.WriteString("|\n")
	}
	sb.WriteString(strings.Repeat("_", BoardWidth+2))
	return sb.String()
}
