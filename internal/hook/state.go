package hook

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/scrollwatch/internal/viewport"
)

// stateTable converts an update into the table passed to handlers.
func stateTable(L *lua.LState, snap viewport.Snapshot, flags viewport.Flags) *lua.LTable {
	state := L.NewTable()

	if sc := snap.Scroll; sc != nil {
		t := L.NewTable()
		t.RawSetString("x", lua.LNumber(sc.X))
		t.RawSetString("y", lua.LNumber(sc.Y))
		t.RawSetString("up", lua.LBool(sc.IsScrollingUp))
		t.RawSetString("down", lua.LBool(sc.IsScrollingDown))
		t.RawSetString("left", lua.LBool(sc.IsScrollingLeft))
		t.RawSetString("right", lua.LBool(sc.IsScrollingRight))
		t.RawSetString("x_turn", lua.LNumber(sc.XTurn))
		t.RawSetString("y_turn", lua.LNumber(sc.YTurn))
		t.RawSetString("dx_turn", lua.LNumber(sc.XDTurn))
		t.RawSetString("dy_turn", lua.LNumber(sc.YDTurn))
		state.RawSetString("scroll", t)
	}

	if d := snap.Dimensions; d != nil {
		t := L.NewTable()
		t.RawSetString("width", lua.LNumber(d.Width))
		t.RawSetString("height", lua.LNumber(d.Height))
		t.RawSetString("client_width", lua.LNumber(d.ClientWidth))
		t.RawSetString("client_height", lua.LNumber(d.ClientHeight))
		t.RawSetString("outer_width", lua.LNumber(d.OuterWidth))
		t.RawSetString("outer_height", lua.LNumber(d.OuterHeight))
		t.RawSetString("document_width", lua.LNumber(d.DocumentWidth))
		t.RawSetString("document_height", lua.LNumber(d.DocumentHeight))
		state.RawSetString("dimensions", t)
	}

	f := L.NewTable()
	f.RawSetString("scroll", lua.LBool(flags.ScrollDidUpdate))
	f.RawSetString("dimensions", lua.LBool(flags.DimensionsDidUpdate))
	state.RawSetString("flags", f)

	return state
}
