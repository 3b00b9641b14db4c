package main

import (
	"container/list"
	"fmt"
	"time"

	"github.com/bskari/go-mixer/mixer"
	"github.com/nsf/termbox-go"
)

const DASHBOARD_PERIOD = 100 * time.Millisecond
const DASHBOARD_MESSAGES = 5

type stringWriter struct {
	Line int
}

func (writer *stringWriter) WriteLine(str string) {
	writer.write(0, str, termbox.ColorWhite)
}

func (writer *stringWriter) IndentLine(str string) {
	writer.write(3, str, termbox.ColorWhite)
}

func (writer *stringWriter) WarnLine(str string) {
	writer.write(3, str, termbox.ColorRed)
}

func (writer *stringWriter) write(indent int, str string, color termbox.Attribute) {
	for x, r := range []rune(str) {
		termbox.SetCell(x+indent, writer.Line, r, color, termbox.ColorBlack)
	}
	writer.Line++
}

type dashboard struct {
	updated  time.Time
	messages *list.List
}

func newDashboard() *dashboard {
	return &dashboard{messages: list.New()}
}

func (d *dashboard) log(message string) {
	now := time.Now()
	formatted := fmt.Sprintf("%s %s", now.Format("15:04:05.000"), message)
	d.messages.PushFront(formatted)
	if d.messages.Len() > DASHBOARD_MESSAGES {
		d.messages.Remove(d.messages.Back())
	}
	mixer.Logger.Info(message)
}

func (d *dashboard) update(mix *mixer.Mixer, sim *simulation) {
	// Only update this often
	if time.Since(d.updated) < DASHBOARD_PERIOD {
		return
	}
	d.updated = time.Now()

	writer := &stringWriter{Line: 0}
	termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)

	config := mix.Configuration()
	writer.WriteLine(fmt.Sprintf("=== %v %v ===", config.Platform, config.Motor.Protocol))
	writer.IndentLine(fmt.Sprintf("Armed:%v Failsafe:%v Manual:%v Autotrim:%v",
		sim.armed, sim.failsafe, sim.manual, sim.autotrim))
	writer.IndentLine(fmt.Sprintf("Roll:%4.0f Pitch:%4.0f Yaw:%4.0f Throttle:%4.0f",
		sim.sticks.Roll, sim.sticks.Pitch, sim.sticks.Yaw, sim.throttle))

	writer.WriteLine("=== Motors ===")
	writer.IndentLine(fmt.Sprintf("Status:%v Direction:%v", mix.MotorStatus(), mix.Direction()))
	saturation := fmt.Sprintf("Saturation:%0.2f Authority:%0.2f", mix.Saturation(), mix.AuthorityRatio())
	if mix.Saturation() > 1 {
		writer.WarnLine(saturation)
	} else {
		writer.IndentLine(saturation)
	}
	for i := 0; i < mix.MotorCount(); i++ {
		writer.IndentLine(fmt.Sprintf("%2d: %7.1f -> %4d", i, mix.MotorCommand(i), mix.MotorValue(i)))
	}

	writer.WriteLine("=== Servos ===")
	for i := 0; i < mix.ServoCount(); i++ {
		params := mix.Servos().Params(i)
		writer.IndentLine(fmt.Sprintf("%2d: %4d (middle %4d)", i, mix.ServoValue(i), params.Middle))
	}

	writer.WriteLine("=== Autotrim ===")
	writer.IndentLine(fmt.Sprintf("State:%v Pitch I-term:%0.1f", mix.AutotrimState(), sim.integrator.AxisIterm(mixer.FD_PITCH)))
	if mix.PwmOutputError() {
		writer.WarnLine("Output write failing")
	}

	writer.WriteLine("=== Messages ===")
	for e := d.messages.Front(); e != nil; e = e.Next() {
		writer.IndentLine(e.Value.(string))
	}
	writer.WriteLine("a arm, f failsafe, t autotrim, m manual, arrows roll/pitch, z/x yaw,")
	writer.WriteLine("w/s throttle, c center sticks, q quit")
	termbox.Flush()
}
