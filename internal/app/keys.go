package app

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Garsondee/Flight-Scope/internal/input"
)

var directionKeys = map[input.Direction][]ebiten.Key{
	input.DirUp:    {ebiten.KeyArrowUp, ebiten.KeyW},
	input.DirDown:  {ebiten.KeyArrowDown, ebiten.KeyS},
	input.DirLeft:  {ebiten.KeyArrowLeft, ebiten.KeyA},
	input.DirRight: {ebiten.KeyArrowRight, ebiten.KeyD},
}

// sampleKeys reads the held arrow/WASD keys.
func sampleKeys() input.Flags {
	var f input.Flags
	for d, keys := range directionKeys {
		for _, k := range keys {
			if ebiten.IsKeyPressed(k) {
				f = f.Set(d, true)
				break
			}
		}
	}
	return f
}
