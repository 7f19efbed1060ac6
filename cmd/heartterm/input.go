package main

import (
	"github.com/gdamore/tcell/v2"

	"github.com/decker502/heartbloom/pkg/scenes"
)

// inputAction 事件处理结果
type inputAction int

const (
	actionNone inputAction = iota
	actionQuit
	actionReflect
)

// inputController 把 tcell 事件翻译为场景手势
type inputController struct {
	scene   *scenes.HeartScene
	view    *termView
	clock   scenes.Clock
	holding bool
}

func (c *inputController) handle(ev tcell.Event) inputAction {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC, ev.Rune() == 'q':
			return actionQuit
		case ev.Rune() == 'n':
			return actionReflect
		case ev.Rune() == ' ':
			// 终端没有按键抬起事件，空格切换按住状态
			if c.holding {
				c.release(false)
			} else {
				c.press()
			}
		}

	case *tcell.EventMouse:
		x, y := ev.Position()
		if !c.view.inField(x, y) {
			if c.holding {
				c.release(true)
			}
			return actionNone
		}
		c.scene.PointerMove(c.view.cellToScene(x, y))

		pressed := ev.Buttons()&tcell.Button1 != 0
		switch {
		case pressed && !c.holding:
			c.press()
		case !pressed && c.holding:
			c.release(false)
		}

	case *tcell.EventFocus:
		if !ev.Focused && c.holding {
			c.release(true)
		}

	case *tcell.EventResize:
		if c.holding {
			c.release(true)
		}
	}
	return actionNone
}

func (c *inputController) press() {
	c.holding = true
	c.scene.HoldStart(c.clock())
}

func (c *inputController) release(cancelled bool) {
	c.holding = false
	if cancelled {
		c.scene.HoldCancel(c.clock())
		return
	}
	c.scene.HoldEnd(c.clock())
}
