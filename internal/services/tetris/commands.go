package tetris

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/progate-hackathon-strawberry-flavor/GITRIS-judge/internal/models/tetris"
)

// Command はソリューションが送ってくる1つの操作です。
type Command string

const (
	CommandShiftLeft  Command = "shift_left"
	CommandShiftRight Command = "shift_right"
	CommandRotate     Command = "rotate"
)

var (
	// ErrMalformedCommand は未知の操作トークンを受け取ったことを表します。
	ErrMalformedCommand = errors.New("malformed command")
	// ErrParseFailure はピースの告知行を解釈できなかったことを表します。
	ErrParseFailure = errors.New("unparseable piece line")
)

// Mode はゲームモードです。ModeOOnly ではO-ミノしか出現せず、告知行は列番号だけになります。
type Mode int

const (
	ModeFull Mode = iota
	ModeOOnly
)

// ParseMode は設定値の文字列をModeに変換します。
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "full", "level-9":
		return ModeFull, nil
	case "o-only", "o", "simple":
		return ModeOOnly, nil
	default:
		return ModeFull, fmt.Errorf("unknown game mode %q", s)
	}
}

func (m Mode) String() string {
	if m == ModeOOnly {
		return "o-only"
	}
	return "full"
}

// CheckKinds はモードで告知できない種類が含まれていないかを確認します。
// o-only モードの告知行は種類を持たないため、O以外は出現させられません。
func (m Mode) CheckKinds(kinds []tetris.PieceType) error {
	if m != ModeOOnly {
		return nil
	}
	for _, kind := range kinds {
		if kind != tetris.TypeO {
			return fmt.Errorf("mode %s cannot announce %s pieces", m, kind)
		}
	}
	return nil
}

// DefaultKinds はモードごとの出現するテトリミノの集合です。
func (m Mode) DefaultKinds() []tetris.PieceType {
	if m == ModeOOnly {
		return []tetris.PieceType{tetris.TypeO}
	}
	return tetris.AllPieceTypes
}

// isASCIISpace はトークンの区切りとして扱う空白文字です。
// U+00A0 などのUnicode空白は区切りにならず、トークンの一部として扱われます。
func isASCIISpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

// ParseCommands は1行の操作列をASCII空白で区切って解釈します。空のトークンは無視されます。
func ParseCommands(line string) ([]Command, error) {
	fields := strings.FieldsFunc(line, isASCIISpace)
	commands := make([]Command, 0, len(fields))
	for _, token := range fields {
		switch Command(token) {
		case CommandShiftLeft, CommandShiftRight, CommandRotate:
			commands = append(commands, Command(token))
		default:
			return nil, fmt.Errorf("token %q: %w", token, ErrMalformedCommand)
		}
	}
	return commands, nil
}

// FormatCommands は操作列を空白区切りの1行にします。
func FormatCommands(commands []Command) string {
	tokens := make([]string, len(commands))
	for i, c := range commands {
		tokens[i] = string(c)
	}
	return strings.Join(tokens, " ")
}

// ApplyCommand は1つの操作をピースに適用します。
// 移動も回転もボードの端で止まるだけで、失敗することはありません。
func ApplyCommand(p *tetris.Piece, c Command) {
	switch c {
	case CommandShiftLeft:
		p.ShiftLeft()
	case CommandShiftRight:
		p.ShiftRight()
	case CommandRotate:
		p.Rotate()
	}
}

// ApplyCommands は操作列を左から順に適用します。
func ApplyCommands(p *tetris.Piece, commands []Command) {
	for _, c := range commands {
		ApplyCommand(p, c)
	}
}

// FormatAnnouncement はピースの告知行を作ります。
func FormatAnnouncement(p tetris.Piece, mode Mode) string {
	if mode == ModeOOnly {
		return strconv.Itoa(p.Offset)
	}
	return p.Type.String() + " " + strconv.Itoa(p.Offset)
}

// ParsePieceLine は告知行 "<kind> <offset>" を解釈します。
// ModeOOnly では種類を省略した "<offset>" も受け付けます。
// 返されるピースの回転は常に0で、Offset は0度の状態で有効な範囲に収まっています。
func ParsePieceLine(line string, mode Mode) (tetris.Piece, error) {
	fields := strings.Fields(line)
	var kindToken, offsetToken string
	switch {
	case len(fields) == 1 && mode == ModeOOnly:
		kindToken, offsetToken = tetris.TypeO.String(), fields[0]
	case len(fields) == 2:
		kindToken, offsetToken = fields[0], fields[1]
	default:
		return tetris.Piece{}, fmt.Errorf("%q: %w", line, ErrParseFailure)
	}

	kind, ok := tetris.StringToPieceType(kindToken)
	if !ok {
		return tetris.Piece{}, fmt.Errorf("kind %q: %w", kindToken, ErrParseFailure)
	}
	offset, err := strconv.Atoi(offsetToken)
	if err != nil {
		return tetris.Piece{}, fmt.Errorf("offset %q: %w", offsetToken, ErrParseFailure)
	}
	piece := tetris.Piece{Type: kind, Offset: offset}
	if !piece.InBounds() {
		return tetris.Piece{}, fmt.Errorf("offset %d out of range for %s: %w", offset, kind, ErrParseFailure)
	}
	return piece, nil
}
