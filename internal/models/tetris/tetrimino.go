package tetris

// PieceType はテトリミノの種類を表します。
type PieceType int

const (
	TypeI PieceType = iota // 0: I-ミノ
	TypeO                  // 1: O-ミノ
	TypeT                  // 2: T-ミノ
	TypeS                  // 3: S-ミノ
	TypeZ                  // 4: Z-ミノ
	TypeJ                  // 5: J-ミノ
	TypeL                  // 6: L-ミノ
)

// AllPieceTypes は標準の7種類のテトリミノです。
var AllPieceTypes = []PieceType{TypeI, TypeO, TypeT, TypeS, TypeZ, TypeJ, TypeL}

// Block はピースの基準点からの相対座標 {列, 行} です。
// 行はピースの最下段を0として上向きに増えます。
type Block [2]int

// Shape は1つの回転状態を構成する4つのブロックです。
type Shape [4]Block

// pieceShapes は各PieceTypeの回転状態ごとのブロック座標を定義します。
// 回転周期が180度の I, S, Z は2状態、O は1状態のみを持ち、
// インデックスは (rotation / 90) を状態数で割った余りで選ばれます。
var pieceShapes = map[PieceType][]Shape{
	TypeI: {
		{{0, 0}, {0, 1}, {0, 2}, {0, 3}}, // 0度 (縦)
		{{0, 0}, {1, 0}, {2, 0}, {3, 0}}, // 90度 (横)
	},
	TypeO: {
		{{0, 0}, {1, 0}, {0, 1}, {1, 1}},
	},
	TypeT: {
		{{0, 1}, {1, 1}, {2, 1}, {1, 0}}, // 0度 (下向き)
		{{1, 2}, {1, 1}, {1, 0}, {0, 1}}, // 90度
		{{0, 0}, {1, 0}, {2, 0}, {1, 1}}, // 180度 (上向き)
		{{0, 2}, {0, 1}, {0, 0}, {1, 1}}, // 270度
	},
	TypeS: {
		{{0, 0}, {1, 0}, {1, 1}, {2, 1}},
		{{0, 2}, {0, 1}, {1, 1}, {1, 0}},
	},
	TypeZ: {
		{{0, 1}, {1, 1}, {1, 0}, {2, 0}},
		{{1, 2}, {1, 1}, {0, 1}, {0, 0}},
	},
	TypeJ: {
		{{1, 2}, {1, 1}, {1, 0}, {0, 0}},
		{{0, 1}, {0, 0}, {1, 0}, {2, 0}},
		{{0, 2}, {0, 1}, {0, 0}, {1, 2}},
		{{0, 1}, {1, 1}, {2, 1}, {2, 0}},
	},
	TypeL: {
		{{0, 2}, {0, 1}, {0, 0}, {1, 0}},
		{{0, 1}, {1, 1}, {2, 1}, {0, 0}},
		{{0, 2}, {1, 2}, {1, 1}, {1, 0}},
		{{0, 0}, {1, 0}, {2, 0}, {2, 1}},
	},
}

// NormalizeRotation は任意の回転角度を 0, 90, 180, 270 のいずれかに丸めます。
// 90の倍数でない値は直前の90度刻みに切り捨てられます。
func NormalizeRotation(rotation int) int {
	r := ((rotation % 360) + 360) % 360
	return r - r%90
}

// ShapeAt は指定された種類と回転角度のブロック座標を返します。
// 未知の種類に対してはI-ミノの形状を返します。
func ShapeAt(t PieceType, rotation int) Shape {
	shapes, ok := pieceShapes[t]
	if !ok {
		shapes = pieceShapes[TypeI]
	}
	idx := NormalizeRotation(rotation) / 90
	return shapes[idx%len(shapes)]
}

// WidthAt はブロックの最大列オフセット+1を返します。
func WidthAt(t PieceType, rotation int) int {
	width := 0
	for _, b := range ShapeAt(t, rotation) {
		if b[0]+1 > width {
			width = b[0] + 1
		}
	}
	return width
}

// HeightAt はブロックの最大行オフセット+1を返します。
func HeightAt(t PieceType, rotation int) int {
	height := 0
	for _, b := range ShapeAt(t, rotation) {
		if b[1]+1 > height {
			height = b[1] + 1
		}
	}
	return height
}

// Piece は1ラウンドの間だけ存在するテトリミノの状態です。
// Offset はバウンディングボックス左端の列 (1始まり) です。
type Piece struct {
	Type     PieceType `json:"type"`
	Offset   int       `json:"offset"`
	Rotation int       `json:"rotation"` // 0, 90, 180, 270 度
}

// Blocks は現在の回転状態でのブロック座標を返します。
func (p *Piece) Blocks() Shape {
	return ShapeAt(p.Type, p.Rotation)
}

// Width は現在の回転状態での横幅です。
func (p *Piece) Width() int {
	return WidthAt(p.Type, p.Rotation)
}

// Height は現在の回転状態での高さです。
func (p *Piece) Height() int {
	return HeightAt(p.Type, p.Rotation)
}

// MaxOffset は現在の回転状態で許される最も右のOffsetです。
func (p *Piece) MaxOffset() int {
	return BoardWidth - p.Width() + 1
}

// InBounds はOffsetが現在の回転状態で [1, MaxOffset] の範囲にあるかどうかを返します。
func (p *Piece) InBounds() bool {
	return p.Offset >= 1 && p.Offset <= p.MaxOffset()
}

// ShiftLeft はピースを1列左へ動かします。左端では何もしません。
func (p *Piece) ShiftLeft() {
	if p.Offset > 1 {
		p.Offset--
	}
}

// ShiftRight はピースを1列右へ動かします。右端では何もしません。
func (p *Piece) ShiftRight() {
	if p.Offset < p.MaxOffset() {
		p.Offset++
	}
}

// Rotate はピースを90度回転させます。
// 回転後に右端からはみ出す場合は、回転を失敗させずにOffsetを左へ寄せます。
func (p *Piece) Rotate() {
	p.Rotation = NormalizeRotation(p.Rotation + 90)
	if limit := p.MaxOffset(); p.Offset > limit {
		p.Offset = limit
	}
}

// StringToPieceType は文字列のテトリミノタイプ（"I", "O", "T"など）をPieceTypeに変換します。
func StringToPieceType(s string) (PieceType, bool) {
	switch s {
	case "I":
		return TypeI, true
	case "O":
		return TypeO, true
	case "T":
		return TypeT, true
	case "S":
		return TypeS, true
	case "Z":
		return TypeZ, true
	case "J":
		return TypeJ, true
	case "L":
		return TypeL, true
	default:
		return TypeI, false
	}
}

// String はPieceTypeを1文字の表現に変換します。
func (t PieceType) String() string {
	switch t {
	case TypeI:
		return "I"
	case TypeO:
		return "O"
	case TypeT:
		return "T"
	case TypeS:
		return "S"
	case TypeZ:
		return "Z"
	case TypeJ:
		return "J"
	case TypeL:
		return "L"
	default:
		return "?"
	}
}
