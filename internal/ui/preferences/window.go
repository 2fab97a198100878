// Package preferences shows the session preferences window opened from the
// tray: sliders, intent, theme, sound and the task to plan for.
package preferences

import (
	"fmt"

	"focuspulse/internal/core/model"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

const noTask = "(generic)"

// Values are the fields the window edits.
type Values struct {
	Energy      int
	Distraction int
	Intent      string
	Theme       string
	Sound       bool
	TaskID      string
}

// Window handles the preferences UI.
type Window struct {
	window      fyne.Window
	values      Values
	tasks       []model.Task
	onSave      func(Values)
	energy      *widget.Slider
	distraction *widget.Slider
	intent      *widget.Entry
	theme       *widget.Select
	sound       *widget.Check
	task        *widget.Select
}

// New creates a preferences window. themes lists the selectable theme names.
func New(app fyne.App, themes []string, onSave func(Values)) *Window {
	window := app.NewWindow("focuspulse preferences")

	energy := widget.NewSlider(model.MinRating, model.MaxRating)
	energy.Step = 1
	distraction := widget.NewSlider(model.MinRating, model.MaxRating)
	distraction.Step = 1

	intent := widget.NewEntry()
	intent.SetPlaceHolder("What is this session for?")

	themeSelect := widget.NewSelect(themes, nil)
	sound := widget.NewCheck("Sound cues", nil)
	task := widget.NewSelect([]string{noTask}, nil)

	form := container.NewVBox(
		widget.NewLabelWithStyle("Right now", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabel("Energy"),
		energy,
		widget.NewLabel("Distraction"),
		distraction,
		intent,
		widget.NewLabelWithStyle("Plan for", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		task,
		widget.NewLabelWithStyle("General", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		themeSelect,
		sound,
	)

	saveButton := widget.NewButton("Save", nil)
	cancelButton := widget.NewButton("Cancel", func() { window.Hide() })
	buttons := container.NewHBox(saveButton, layout.NewSpacer(), cancelButton)

	window.SetContent(container.NewBorder(nil, buttons, nil, nil, form))
	window.Resize(fyne.NewSize(380, 420))
	window.SetCloseIntercept(func() { window.Hide() })

	prefs := &Window{
		window:      window,
		onSave:      onSave,
		energy:      energy,
		distraction: distraction,
		intent:      intent,
		theme:       themeSelect,
		sound:       sound,
		task:        task,
	}
	saveButton.OnTapped = prefs.Save
	return prefs
}

// Show displays the preferences window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// Update replaces the values shown and the tasks offered.
func (prefs *Window) Update(values Values, tasks []model.Task) {
	prefs.values = values
	prefs.tasks = append([]model.Task(nil), tasks...)

	prefs.energy.SetValue(float64(values.Energy))
	prefs.distraction.SetValue(float64(values.Distraction))
	prefs.intent.SetText(values.Intent)
	prefs.theme.SetSelected(values.Theme)
	prefs.sound.SetChecked(values.Sound)

	options := []string{noTask}
	selected := noTask
	for _, task := range prefs.tasks {
		label := taskLabel(task)
		options = append(options, label)
		if task.ID == values.TaskID {
			selected = label
		}
	}
	prefs.task.SetOptions(options)
	prefs.task.SetSelected(selected)
}

// Values returns what the widgets currently show.
func (prefs *Window) Values() Values {
	values := prefs.values
	values.Energy = int(prefs.energy.Value)
	values.Distraction = int(prefs.distraction.Value)
	values.Intent = prefs.intent.Text
	values.Theme = prefs.theme.Selected
	values.Sound = prefs.sound.Checked
	values.TaskID = ""
	if index := prefs.task.SelectedIndex(); index > 0 && index <= len(prefs.tasks) {
		values.TaskID = prefs.tasks[index-1].ID
	}
	return values
}

// taskLabel names a task in the selector. The short ID keeps labels unique
// when titles repeat.
func taskLabel(task model.Task) string {
	id := task.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("%s (%s)", task.Title, id)
}

// Save hands the current values to the save callback and hides the window.
func (prefs *Window) Save() {
	prefs.values = prefs.Values()
	if prefs.onSave != nil {
		prefs.onSave(prefs.values)
	}
	prefs.window.Hide()
}
