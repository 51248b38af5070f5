package game

import "errors"

var (
	ErrCreatureDead = errors.New("creature is dead")
)
