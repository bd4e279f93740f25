package identity

import (
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/oklog/ulid/v2"
)

// ErrInvalidID はIDの形式が不正な場合に返却されます。
var ErrInvalidID = errors.New("無効なID形式です")

// EntityID は全エンティティ共通の識別子です。
// ULID（26文字・辞書順ソート可能）を値として保持します。
type EntityID struct {
	value string
}

// Generate は新しい EntityID を採番します。
func Generate() EntityID {
	return EntityID{value: ulid.MustNew(ulid.Now(), rand.Reader).String()}
}

// New は外部入力の文字列を検証して EntityID を生成します。
func New(raw string) (EntityID, error) {
	if _, err := ulid.ParseStrict(raw); err != nil {
		return EntityID{}, fmt.Errorf("%w: %s", ErrInvalidID, raw)
	}
	return EntityID{value: raw}, nil
}

// Reconstruct は永続化済みの値から EntityID を復元します。
// 形式検証は New と同じで、不正な値は保存時点の破損とみなします。
func Reconstruct(raw string) (EntityID, error) {
	return New(raw)
}

// String はIDの文字列表現を返します。
func (id EntityID) String() string {
	return id.value
}

// IsZero は未設定のIDかどうかを返します。
func (id EntityID) IsZero() bool {
	return id.value == ""
}
