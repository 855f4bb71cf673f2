package domain

import "fmt"

// BlockType classifies a scheduled block.
type BlockType string

const (
	BlockTypeDeepWork BlockType = "deep-work"
	BlockTypeMeeting  BlockType = "meeting"
	BlockTypeBreak    BlockType = "break"
	BlockTypeAdmin    BlockType = "admin"
	BlockTypePersonal BlockType = "personal"
)

// Block is one hour of the daily template.
type Block struct {
	Time     string    `json:"time"`
	Activity string    `json:"activity"`
	Type     BlockType `json:"type"`
}

// Schedule is the per-day list of blocks.
type Schedule map[Day][]Block

var workday = []Block{
	{Time: "08:00", Activity: "Plan Day", Type: BlockTypeAdmin},
	{Time: "09:00", Activity: "Deep Work", Type: BlockTypeDeepWork},
	{Time: "10:00", Activity: "Deep Work", Type: BlockTypeDeepWork},
	{Time: "11:00", Activity: "Deep Work", Type: BlockTypeDeepWork},
	{Time: "12:00", Activity: "Eat", Type: BlockTypeBreak},
	{Time: "13:00", Activity: "To Do List", Type: BlockTypeAdmin},
	{Time: "14:00", Activity: "Meetings", Type: BlockTypeMeeting},
	{Time: "15:00", Activity: "Workout", Type: BlockTypePersonal},
	{Time: "16:00", Activity: "Eat", Type: BlockTypeBreak},
	{Time: "17:00", Activity: "Messenger", Type: BlockTypeAdmin},
}

// DefaultSchedule returns a fresh copy of the Mon–Fri template.
func DefaultSchedule() Schedule {
	s := make(Schedule, len(Days()))
	for _, d := range Days() {
		blocks := make([]Block, len(workday))
		copy(blocks, workday)
		s[d] = blocks
	}
	return s
}

// Block returns the block addressed by key.
func (s Schedule) Block(key BlockKey) (Block, error) {
	blocks, ok := s[key.Day]
	if !ok || key.Index < 0 || key.Index >= len(blocks) {
		return Block{}, fmt.Errorf("%w: %s", ErrUnknownBlock, key)
	}
	return blocks[key.Index], nil
}

// Keys lists every block key of day in order.
func (s Schedule) Keys(day Day) []BlockKey {
	blocks := s[day]
	keys := make([]BlockKey, len(blocks))
	for i := range blocks {
		keys[i] = BlockKey{Day: day, Index: i}
	}
	return keys
}

// CountByType counts the blocks of day with the given type.
func (s Schedule) CountByType(day Day, t BlockType) int {
	n := 0
	for _, b := range s[day] {
		if b.Type == t {
			n++
		}
	}
	return n
}
