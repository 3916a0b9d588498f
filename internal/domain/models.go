package domain

import "time"

// Item is one quiz subject shown to the player.
type Item struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	ImageRef       string   `json:"imageRef"`
	CorrectAnswers []string `json:"correctAnswers"`
}

// PublicItem is the view of an Item that is safe to send to a player.
type PublicItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageRef    string `json:"imageRef"`
}

// Public strips the answers from an item.
func (i Item) Public() PublicItem {
	return PublicItem{
		ID:          i.ID,
		Name:        i.Name,
		Description: i.Description,
		ImageRef:    i.ImageRef,
	}
}

// Outcome records a single validated guess.
type Outcome struct {
	ItemID     string `json:"itemId"`
	ItemName   string `json:"itemName"`
	Guess      string `json:"guess"`
	WasCorrect bool   `json:"wasCorrect"`
}

// Results summarizes a finished session.
type Results struct {
	Total        int      `json:"total"`
	CorrectCount int      `json:"correctCount"`
	Percentage   float64  `json:"percentage"`
	Correct      []string `json:"correct"`
	Incorrect    []string `json:"incorrect"`
}

// Progress is the position of a session within its pool.
type Progress struct {
	Cursor   int  `json:"cursor"`
	Total    int  `json:"total"`
	Finished bool `json:"finished"`
}

// GuessResult is returned for every accepted guess or batch of guesses.
type GuessResult struct {
	ItemID   string   `json:"itemId"`
	Correct  []bool   `json:"correct"`
	Progress Progress `json:"progress"`
}

// SessionSnapshot is a serializable view of session state used by stores.
type SessionSnapshot struct {
	ID           string    `json:"id"`
	Cursor       int       `json:"cursor"`
	PoolSize     int       `json:"poolSize"`
	CorrectCount int       `json:"correctCount"`
	Answered     int       `json:"answered"`
	CreatedAt    time.Time `json:"createdAt"`
}
