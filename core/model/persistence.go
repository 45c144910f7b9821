package model

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"
)

// SaveModel はモデルをファイルに保存する
//
// 永続化はgob形式で行う。選択オーケストレータ自身はストレージに書き込まず、
// 勝者のartifactを受け取った呼び出し側がこの関数で保存する。
// 書き込み失敗（権限、ディスク容量）はリトライせずそのまま返す。
//
// 使用例:
//
//	err := model.SaveModel(winner, "winner.gob")
func SaveModel(model interface{}, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(model); err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}

	return nil
}

// LoadModel はファイルからモデルを読み込む
//
// 読み込み先は保存時と同じ具象型のポインタでなければならない。
func LoadModel(model interface{}, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if err := gob.NewDecoder(file).Decode(model); err != nil {
		return fmt.Errorf("failed to decode model: %w", err)
	}

	return nil
}

// SaveModelToWriter はモデルをio.Writerに保存する
func SaveModelToWriter(model interface{}, w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(model); err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}
	return nil
}

// LoadModelFromReader はio.Readerからモデルを読み込む
func LoadModelFromReader(model interface{}, r io.Reader) error {
	if err := gob.NewDecoder(r).Decode(model); err != nil {
		return fmt.Errorf("failed to decode model: %w", err)
	}
	return nil
}
