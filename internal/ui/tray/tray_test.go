package tray

import (
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gohome/internal/core/model"
	"gohome/internal/core/schedule"
	"gohome/internal/core/timekeeper"
)

type fakeDesktop struct {
	menus []*fyne.Menu
	icons []fyne.Resource
}

func (app *fakeDesktop) SetSystemTrayMenu(menu *fyne.Menu) {
	app.menus = append(app.menus, menu)
}

func (app *fakeDesktop) SetSystemTrayIcon(icon fyne.Resource) {
	app.icons = append(app.icons, icon)
}

func (app *fakeDesktop) SetSystemTrayWindow(fyne.Window) {}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "All done", StatusLabel(timekeeper.Report{}))

	finish := time.Date(2026, 3, 2, 17, 45, 30, 0, time.Local)
	report := timekeeper.Report{HasWork: true, Completion: finish}
	assert.Equal(t, "Done at 17:45:30", StatusLabel(report))

	report.Statuses = []schedule.EventStatus{{State: model.StateExpired}, {State: model.StateCounting}}
	assert.Equal(t, "Done at 17:45:30, 1 waiting", StatusLabel(report))
}

func TestMenuRoutesCallbacks(t *testing.T) {
	app := &fakeDesktop{}
	var shown, prefs, quit int
	manager := New(app, Icons{}, Callbacks{
		OnShowEvents:  func() { shown++ },
		OnPreferences: func() { prefs++ },
		OnQuit:        func() { quit++ },
	})

	require.Len(t, app.menus, 1)
	items := app.menus[0].Items
	require.Len(t, items, 5)
	assert.Equal(t, "starting...", items[0].Label)
	assert.True(t, items[0].Disabled)

	items[1].Action()
	items[2].Action()
	items[4].Action()
	assert.Equal(t, 1, shown)
	assert.Equal(t, 1, prefs)
	assert.Equal(t, 1, quit)

	manager.Update(timekeeper.Report{})
	require.Len(t, app.menus, 2)
	assert.Equal(t, "All done", app.menus[1].Items[0].Label)

	manager.Update(timekeeper.Report{})
	assert.Len(t, app.menus, 2)
}

func TestIconFollowsPendingConfirmations(t *testing.T) {
	app := &fakeDesktop{}
	icons := Icons{
		Default: fyne.NewStaticResource("default.svg", []byte("d")),
		Waiting: fyne.NewStaticResource("waiting.svg", []byte("w")),
	}
	manager := New(app, icons, Callbacks{})
	require.Equal(t, []fyne.Resource{icons.Default}, app.icons)

	waiting := timekeeper.Report{
		HasWork:  true,
		Statuses: []schedule.EventStatus{{State: model.StateExpired}},
	}
	manager.Update(waiting)
	manager.Update(waiting)
	assert.Equal(t, []fyne.Resource{icons.Default, icons.Waiting}, app.icons)

	manager.Update(timekeeper.Report{})
	assert.Equal(t, []fyne.Resource{icons.Default, icons.Waiting, icons.Default}, app.icons)
}
