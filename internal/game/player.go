package game

import "fmt"

// Player 玩家
type Player struct {
	Name       string
	Hand       *Hand
	eliminated bool
}

// NewPlayer 创建玩家（持有空手牌）
func NewPlayer(name string) *Player {
	return &Player{
		Name: name,
		Hand: NewHand(),
	}
}

// Eliminate 将玩家置为出局
func (p *Player) Eliminate() {
	p.eliminated = true
}

// IsActive 玩家是否仍在对局中（未出局）
func (p *Player) IsActive() bool {
	return !p.eliminated
}

// Score 玩家当前的手牌得分
func (p *Player) Score() int {
	return p.Hand.Score()
}

// String 调试用
func (p *Player) String() string {
	status := "ACTIVE"
	if p.eliminated {
		status = "ELIMINATED"
	}
	return fmt.Sprintf("%s [%s] - Hand: %d cards, Score: %d", p.Name, status, p.Hand.Size(), p.Score())
}
