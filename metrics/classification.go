package metrics

import (
	"math"

	"github.com/YuminosukeSato/pipefit/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Accuracy は正解率（Accuracy）を計算する
//
// Accuracy = 正しく分類されたサンプル数 / 全サンプル数
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	// 入力検証
	if yTrue == nil || yTrue.Len() == 0 {
		return 0, errors.NewValueError("Accuracy", "empty vector")
	}

	n := yTrue.Len()
	if yPred == nil || yPred.Len() != n {
		got := 0
		if yPred != nil {
			got = yPred.Len()
		}
		return 0, errors.NewDimensionError("Accuracy", n, got, 0)
	}

	correct := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == yPred.AtVec(i) {
			correct++
		}
	}

	return float64(correct) / float64(n), nil
}

// AccuracyMatrix は行列形式（n×1）の入力に対してAccuracyを計算する
func AccuracyMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	rTrue, cTrue := yTrue.Dims()
	rPred, cPred := yPred.Dims()

	if rTrue == 0 {
		return 0, errors.NewValueError("AccuracyMatrix", "empty matrix")
	}
	if cTrue != 1 || cPred != 1 {
		return 0, errors.NewValueError("AccuracyMatrix", "must be a column vector (n×1 matrix)")
	}
	if rTrue != rPred {
		return 0, errors.NewDimensionError("AccuracyMatrix", rTrue, rPred, 0)
	}

	correct := 0
	for i := 0; i < rTrue; i++ {
		if yTrue.At(i, 0) == yPred.At(i, 0) {
			correct++
		}
	}

	return float64(correct) / float64(rTrue), nil
}

// ConfusionMatrix は混同行列を計算する
//
// 戻り値の行列はclasses[i]が真のラベル、classes[j]が予測ラベルに対応する。
// classesは昇順に並んだ、yTrueとyPredに現れる全ラベル。
func ConfusionMatrix(yTrue, yPred *mat.VecDense) (*mat.Dense, []int, error) {
	if yTrue == nil || yTrue.Len() == 0 {
		return nil, nil, errors.NewValueError("ConfusionMatrix", "empty vector")
	}

	n := yTrue.Len()
	if yPred == nil || yPred.Len() != n {
		got := 0
		if yPred != nil {
			got = yPred.Len()
		}
		return nil, nil, errors.NewDimensionError("ConfusionMatrix", n, got, 0)
	}

	// ラベル集合を収集してインデックスを割り当てる
	seen := make(map[int]bool)
	for i := 0; i < n; i++ {
		seen[int(yTrue.AtVec(i))] = true
		seen[int(yPred.AtVec(i))] = true
	}

	classes := make([]int, 0, len(seen))
	for label := range seen {
		classes = append(classes, label)
	}
	// 昇順ソート（クラス数は少ないので単純挿入で十分）
	for i := 1; i < len(classes); i++ {
		for j := i; j > 0 && classes[j-1] > classes[j]; j-- {
			classes[j-1], classes[j] = classes[j], classes[j-1]
		}
	}

	index := make(map[int]int, len(classes))
	for i, label := range classes {
		index[label] = i
	}

	cm := mat.NewDense(len(classes), len(classes), nil)
	for i := 0; i < n; i++ {
		ti := index[int(yTrue.AtVec(i))]
		pi := index[int(yPred.AtVec(i))]
		cm.Set(ti, pi, cm.At(ti, pi)+1)
	}

	return cm, classes, nil
}

// PrecisionRecallF1 はマクロ平均の適合率・再現率・F1スコアを計算する
//
// あるクラスについて陽性予測が一つもない場合、そのクラスの適合率は0として
// 扱い、UndefinedMetricにはしない（scikit-learnのzero_division=0と同じ挙動）。
func PrecisionRecallF1(yTrue, yPred *mat.VecDense) (precision, recall, f1 float64, err error) {
	cm, classes, err := ConfusionMatrix(yTrue, yPred)
	if err != nil {
		return 0, 0, 0, err
	}

	k := len(classes)
	var sumP, sumR, sumF float64

	for i := 0; i < k; i++ {
		tp := cm.At(i, i)

		var predicted, actual float64
		for j := 0; j < k; j++ {
			predicted += cm.At(j, i)
			actual += cm.At(i, j)
		}

		var p, r float64
		if predicted > 0 {
			p = tp / predicted
		}
		if actual > 0 {
			r = tp / actual
		}

		var f float64
		if p+r > 0 {
			f = 2 * p * r / (p + r)
		}

		sumP += p
		sumR += r
		sumF += f
	}

	kf := float64(k)
	return sumP / kf, sumR / kf, sumF / kf, nil
}

// ClassificationError は誤分類率 (1 - accuracy) を計算する
func ClassificationError(yTrue, yPred *mat.VecDense) (float64, error) {
	acc, err := Accuracy(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return 1.0 - acc, nil
}

// almostEqual は浮動小数点の比較ヘルパー
func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}
