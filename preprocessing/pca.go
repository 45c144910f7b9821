package preprocessing

import (
	"fmt"

	"github.com/YuminosukeSato/pipefit/core/model"
	"github.com/YuminosukeSato/pipefit/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// PCA は主成分分析による次元削減器
//
// 中心化した訓練データの特異値分解で主成分を求める。成分の符号は
// 「絶対値最大の係数が正になる」よう固定してあり、同じ入力に対して
// 常に同じ変換を返す。
type PCA struct {
	model.BaseEstimator

	// NComponents は残す主成分の数 (0は全成分)
	NComponents int

	// Components は主成分ベクトル (n_components × n_features)
	Components *mat.Dense

	// Mean は学習データの各特徴量の平均値
	Mean []float64

	// ExplainedVariance は各主成分が説明する分散
	ExplainedVariance []float64

	// ExplainedVarianceRatio は分散の寄与率
	ExplainedVarianceRatio []float64

	// NFeatures は特徴量の数
	NFeatures int
}

// NewPCA は新しいPCAを作成する
//
// nComponentsに0を渡すと全成分を保持する。
func NewPCA(nComponents int) *PCA {
	return &PCA{NComponents: nComponents}
}

// Fit は訓練データから主成分を計算する
func (p *PCA) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("PCA.Fit", "empty data", errors.ErrEmptyData)
	}
	if p.NComponents < 0 || p.NComponents > c {
		return errors.NewValidationError("n_components",
			fmt.Sprintf("must be in [0, %d]", c), p.NComponents)
	}

	k := p.NComponents
	if k == 0 {
		k = c
	}
	if k > r {
		k = r
	}

	// 中心化
	p.NFeatures = c
	p.Mean = make([]float64, c)
	for j := 0; j < c; j++ {
		sum := 0.0
		for i := 0; i < r; i++ {
			sum += X.At(i, j)
		}
		p.Mean[j] = sum / float64(r)
	}

	centered := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			centered.Set(i, j, X.At(i, j)-p.Mean[j])
		}
	}

	var svd mat.SVD
	if ok := svd.Factorize(centered, mat.SVDThin); !ok {
		return errors.NewModelError("PCA.Fit", "SVD factorization failed", errors.ErrSingularMatrix)
	}

	var v mat.Dense
	svd.VTo(&v) // V: n_features × min(r, c)
	singular := svd.Values(nil)

	p.Components = mat.NewDense(k, c, nil)
	p.ExplainedVariance = make([]float64, k)
	p.ExplainedVarianceRatio = make([]float64, k)

	total := 0.0
	for _, s := range singular {
		total += s * s / float64(r-1)
	}

	for comp := 0; comp < k; comp++ {
		// 符号の固定: 絶対値最大の係数を正にする
		maxAbs, sign := 0.0, 1.0
		for j := 0; j < c; j++ {
			val := v.At(j, comp)
			if abs := val * val; abs > maxAbs {
				maxAbs = abs
				if val < 0 {
					sign = -1.0
				} else {
					sign = 1.0
				}
			}
		}
		for j := 0; j < c; j++ {
			p.Components.Set(comp, j, sign*v.At(j, comp))
		}

		variance := singular[comp] * singular[comp] / float64(r-1)
		p.ExplainedVariance[comp] = variance
		if total > 0 {
			p.ExplainedVarianceRatio[comp] = variance / total
		}
	}

	p.SetFitted()
	return nil
}

// Transform は主成分空間にデータを射影する
func (p *PCA) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !p.IsFitted() {
		return nil, errors.NewNotFittedError("PCA", "Transform")
	}

	r, c := X.Dims()
	if c != p.NFeatures {
		return nil, errors.NewDimensionError("PCA.Transform", p.NFeatures, c, 1)
	}

	centered := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			centered.Set(i, j, X.At(i, j)-p.Mean[j])
		}
	}

	k, _ := p.Components.Dims()
	result := mat.NewDense(r, k, nil)
	result.Mul(centered, p.Components.T())
	return result, nil
}

// FitTransform は訓練データで学習し、同じデータを変換する
func (p *PCA) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := p.Fit(X); err != nil {
		return nil, err
	}
	return p.Transform(X)
}

// CloneTransformer は同じ設定の未学習PCAを返す
func (p *PCA) CloneTransformer() model.Transformer {
	return NewPCA(p.NComponents)
}

// GetParams はPCAのパラメータを取得する
func (p *PCA) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"n_components": p.NComponents,
	}
}

// SetParams はPCAのパラメータを設定する
func (p *PCA) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		switch key {
		case "n_components":
			n, ok := value.(int)
			if !ok {
				return errors.NewValidationError("n_components", "must be an int", value)
			}
			p.NComponents = n
		default:
			return errors.NewValueError("PCA.SetParams", fmt.Sprintf("unknown parameter: %s", key))
		}
	}
	return nil
}

// String はPCAの文字列表現を返す
func (p *PCA) String() string {
	return fmt.Sprintf("PCA(n_components=%d)", p.NComponents)
}
