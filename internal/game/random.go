package game

import (
	"crypto/rand"
	"math/big"
	mrand "math/rand"
)

// RandomSource 随机源接口
// 正式对局使用加密随机源，测试与复盘使用带种子的随机源。
type RandomSource interface {
	// Intn 返回[0, n)内的随机整数，n必须大于0
	Intn(n int) int
}

// cryptoRandomSource 基于crypto/rand的随机源
type cryptoRandomSource struct{}

// NewCryptoRandomSource 创建加密随机源
func NewCryptoRandomSource() RandomSource {
	return &cryptoRandomSource{}
}

// Intn 生成[0, n)内的随机整数
func (r *cryptoRandomSource) Intn(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand不可用时退回到math/rand
		return mrand.Intn(n)
	}
	return int(v.Int64())
}

// seededRandomSource 带种子的确定性随机源
type seededRandomSource struct {
	rng *mrand.Rand
}

// NewSeededRandomSource 创建带种子的随机源（可重现的洗牌）
func NewSeededRandomSource(seed int64) RandomSource {
	return &seededRandomSource{rng: mrand.New(mrand.NewSource(seed))}
}

// Intn 生成[0, n)内的随机整数
func (r *seededRandomSource) Intn(n int) int {
	return r.rng.Intn(n)
}
