package feeling

import "time"

// EditWindow is how long after logging a feeling its author may still change it.
const EditWindow = 10 * time.Minute

type Color string

const (
	ColorRed    Color = "red"
	ColorOrange Color = "orange"
	ColorYellow Color = "yellow"
	ColorGreen  Color = "green"
	ColorBlue   Color = "blue"
	ColorPurple Color = "purple"
	ColorPink   Color = "pink"
	ColorGray   Color = "gray"
)

var palette = map[Color]string{
	ColorRed:    "#E5484D",
	ColorOrange: "#F76B15",
	ColorYellow: "#FFC53D",
	ColorGreen:  "#30A46C",
	ColorBlue:   "#0090FF",
	ColorPurple: "#8E4EC6",
	ColorPink:   "#D6409F",
	ColorGray:   "#8B8D98",
}

// Colors lists the palette in picker order.
func Colors() []Color {
	return []Color{ColorRed, ColorOrange, ColorYellow, ColorGreen, ColorBlue, ColorPurple, ColorPink, ColorGray}
}

func (c Color) Valid() bool {
	_, ok := palette[c]
	return ok
}

func (c Color) Hex() string {
	return palette[c]
}

type Feeling struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	GroupID   string    `gorm:"type:uuid;not null;uniqueIndex:uidx_feelings_group_user_day"`
	UserID    string    `gorm:"type:uuid;not null;uniqueIndex:uidx_feelings_group_user_day"`
	Day       time.Time `gorm:"type:date;not null;uniqueIndex:uidx_feelings_group_user_day"`
	Color     Color     `gorm:"type:varchar(16);not null"`
	Word      string    `gorm:"type:varchar(24);not null"`
	Reason    *string   `gorm:"type:text"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// EditableUntil is the last instant the author may change the feeling.
func (f Feeling) EditableUntil() time.Time {
	return f.CreatedAt.Add(EditWindow)
}

type LogInput struct {
	UserID  string
	GroupID string
	Color   string
	Word    string
	Reason  string
}

type UpdateInput struct {
	UserID    string
	FeelingID string
	Color     *string
	Word      *string
	Reason    *string
}

// Update carries validated changes. SetReason distinguishes "clear the
// reason" (SetReason with nil Reason) from "leave it alone".
type Update struct {
	Color     *Color
	Word      *string
	Reason    *string
	SetReason bool
}

// GroupResult is the outcome of logging the same feeling to one of several groups.
type GroupResult struct {
	GroupID string
	Feeling *Feeling
	Err     error
}
