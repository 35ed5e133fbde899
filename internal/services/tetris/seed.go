package tetris

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Answer は answer ファイルの内容です。
// 先頭の空白区切りトークンが目標スコア、ファイル先頭32バイトが乱数のシードになります。
type Answer struct {
	Target uint64
	Seed   [32]byte
}

// ParseAnswer は answer ファイルの中身を解釈します。
func ParseAnswer(data []byte) (Answer, error) {
	var answer Answer
	copy(answer.Seed[:], data)

	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return answer, errors.New("answer: target score is missing")
	}
	target, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return answer, fmt.Errorf("answer: invalid target score %q: %w", fields[0], err)
	}
	answer.Target = target
	return answer, nil
}

// LoadAnswer は answer ファイルを読み込みます。ファイルがない場合は空の内容として扱います。
func LoadAnswer(path string) (Answer, error) {
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Answer{}, fmt.Errorf("answer: read %s: %w", path, err)
	}
	return ParseAnswer(data)
}
