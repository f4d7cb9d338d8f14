package tester

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dreitier/testermon/scpi"
	"github.com/dreitier/testermon/scpi/mock"
	"github.com/dreitier/testermon/transcript"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

const testAddress = "192.168.100.254"

type recordingObserver struct {
	connected []bool
	queries   []string
	slow      []string
	downloads []TransferMode
}

func (o *recordingObserver) Connected(connected bool) {
	o.connected = append(o.connected, connected)
}

func (o *recordingObserver) QueryCompleted(cmd string, _ time.Duration, slow bool) {
	o.queries = append(o.queries, cmd)
	if slow {
		o.slow = append(o.slow, cmd)
	}
}

func (o *recordingObserver) FileDownloaded(mode TransferMode, _ int) {
	o.downloads = append(o.downloads, mode)
}

// steppingClock advances by step on every reading
func steppingClock(step time.Duration) func() time.Time {
	now := time.Date(2022, 11, 7, 13, 55, 27, 0, time.Local)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func withClock(clock func() time.Time) Option {
	return func(s *Session) {
		s.clock = clock
	}
}

func newConnectedSession(t *testing.T, opts ...Option) (*Session, *mock.MockDriver, *bytes.Buffer) {
	t.Helper()

	ctrl := gomock.NewController(t)
	driver := mock.NewMockDriver(ctrl)
	console := &bytes.Buffer{}

	driver.EXPECT().Connect(testAddress, DefaultTimeout).Return(nil)

	opts = append([]Option{
		WithTranscript(transcript.New(testAddress, transcript.WithConsole(console))),
		withClock(steppingClock(time.Millisecond)),
	}, opts...)

	return New(driver, testAddress, opts...), driver, console
}

// messages strips timestamp, level and address from every transcript line
func messages(console *bytes.Buffer) []string {
	var r []string
	for _, line := range strings.Split(strings.TrimSuffix(console.String(), "\n"), "\n") {
		if _, message, ok := strings.Cut(line, "]\t"); ok {
			r = append(r, message)
		}
	}
	return r
}

func TestNew_ConnectionFailureLeavesSessionDisconnected(t *testing.T) {
	ctrl := gomock.NewController(t)
	driver := mock.NewMockDriver(ctrl)
	console := &bytes.Buffer{}
	observer := &recordingObserver{}

	driver.EXPECT().Connect(testAddress, 2*time.Second).Return(errors.New("connection refused"))

	sut := New(driver, testAddress,
		WithTimeout(2*time.Second),
		WithObserver(observer),
		WithTranscript(transcript.New(testAddress, transcript.WithConsole(console))))

	assert.False(t, sut.Connected())
	assert.Contains(t, console.String(), "[INFO] [192.168.100.254]\tFailed to connect tester 192.168.100.254")
	assert.Equal(t, []bool{false}, observer.connected)

	// no driver call is made on a disconnected session
	assert.ErrorIs(t, sut.Send("*RST"), scpi.ErrNotConnected)
	_, err := sut.Query("*IDN?")
	assert.ErrorIs(t, err, scpi.ErrNotConnected)
	_, err = sut.QueryList("*IDN?", ",")
	assert.ErrorIs(t, err, scpi.ErrNotConnected)
	_, err = sut.QuerySeqTimeStamp()
	assert.ErrorIs(t, err, scpi.ErrNotConnected)
	_, err = sut.DownloadFile("a.txt", "User", t.TempDir())
	assert.ErrorIs(t, err, scpi.ErrNotConnected)

	_, err = sut.CheckBaseInfo()
	assert.ErrorIs(t, err, scpi.ErrNotConnected)
	assert.Contains(t, messages(console), "No tester connect")

	assert.NoError(t, sut.Disconnect())
}

func TestSession_ConnectAndDisconnect(t *testing.T) {
	observer := &recordingObserver{}
	sut, driver, console := newConnectedSession(t, WithObserver(observer))

	assert.True(t, sut.Connected())
	assert.Equal(t, testAddress, sut.Address())
	assert.Equal(t, []string{"Connected to tester 192.168.100.254"}, messages(console))

	driver.EXPECT().Disconnect().Return(nil).Times(1)

	assert.NoError(t, sut.Disconnect())
	assert.NoError(t, sut.Disconnect())
	assert.False(t, sut.Connected())
	assert.Equal(t, []bool{true}, observer.connected)
}

func TestSession_SendAndQuery(t *testing.T) {
	sut, driver, console := newConnectedSession(t)

	gomock.InOrder(
		driver.EXPECT().Exec("SYS;SEQ:DEL").Return(nil),
		driver.EXPECT().QueryString(scpi.StatusQuery).Return(`-113,"Undefined header",0,"No error"`, nil),
	)

	queue, err := sut.SendAndQuery("SYS;SEQ:DEL")

	assert.NoError(t, err)
	assert.Equal(t, []scpi.InstrumentError{
		{Code: -113, Message: "Undefined header"},
		{Code: 0, Message: "No error"},
	}, queue)
	assert.Equal(t, []string{
		"Connected to tester 192.168.100.254",
		"--> SYS;SEQ:DEL",
		"--> *WAI;ERR:ALL?",
		`<-- [0] -113,"Undefined header`,
		`<-- [1] 0,"No error"`,
		"SYS;SEQ:DEL caused -113, Undefined header",
	}, messages(console))
	assert.Contains(t, console.String(), "[WARN] [192.168.100.254]\tSYS;SEQ:DEL caused")
}

func TestSession_QueryReportsSlowReplies(t *testing.T) {
	observer := &recordingObserver{}
	sut, driver, console := newConnectedSession(t,
		WithObserver(observer),
		WithTimeLimit(3*time.Second),
		withClock(steppingClock(4*time.Second)))

	driver.EXPECT().QueryString("MMEM:CAT?").Return("0,0", nil)

	reply, err := sut.Query("MMEM:CAT?")

	assert.NoError(t, err)
	assert.Equal(t, "0,0", reply)
	assert.Equal(t, []string{"MMEM:CAT?"}, observer.slow)
	assert.Contains(t, console.String(), "[ERROR] [192.168.100.254]\t4.000s for MMEM:CAT?\n")
}

func TestSession_QueryWithinTimeLimit(t *testing.T) {
	observer := &recordingObserver{}
	sut, driver, console := newConnectedSession(t, WithObserver(observer))

	driver.EXPECT().QueryString("SYS;*IDN?").Return("LitePoint,IQxel-MW,SN1234,1.4.0", nil)

	_, err := sut.Query("SYS;*IDN?")

	assert.NoError(t, err)
	assert.Empty(t, observer.slow)
	assert.Equal(t, []string{"SYS;*IDN?"}, observer.queries)
	assert.NotContains(t, console.String(), "[ERROR]")
}

func TestSession_QueryStatusIsLabelled(t *testing.T) {
	observer := &recordingObserver{}
	sut, driver, console := newConnectedSession(t,
		WithObserver(observer),
		withClock(steppingClock(5*time.Second)))

	driver.EXPECT().QueryString(scpi.StatusQuery).Return(`0,"No error"`, nil)

	fields, err := sut.QueryStatus("SYS;MMEM:CDIR")

	assert.NoError(t, err)
	assert.Equal(t, []string{`0,"No error"`}, fields)
	assert.Equal(t, []string{"SYS;MMEM:CDIR"}, observer.slow)
	assert.Contains(t, messages(console), "5.000s for SYS;MMEM:CDIR")
}

func TestSession_Errors(t *testing.T) {
	sut, driver, _ := newConnectedSession(t)

	driver.EXPECT().QueryString(scpi.StatusQuery).Return(`0,"No error"`, nil)

	queue, err := sut.Errors()

	assert.NoError(t, err)
	assert.Equal(t, []scpi.InstrumentError{{Code: 0, Message: "No error"}}, queue)
}

func TestSession_QueryInt(t *testing.T) {
	sut, driver, _ := newConnectedSession(t)

	driver.EXPECT().QueryString(`SYS;MMEM:FEX? "a.txt"`).Return("1,a.txt", nil)
	driver.EXPECT().QueryString("SYS;SEQ:COUN?").Return("abc", nil)
	driver.EXPECT().QueryString("SYS;BROKEN?").Return("", errors.New("i/o timeout"))

	value, err := sut.QueryInt(`SYS;MMEM:FEX? "a.txt"`)
	assert.NoError(t, err)
	assert.Equal(t, 1, value)

	_, err = sut.QueryInt("SYS;SEQ:COUN?")
	assert.Error(t, err)

	_, err = sut.QueryInt("SYS;BROKEN?")
	assert.ErrorContains(t, err, "i/o timeout")
}

func TestSession_ExecSequence(t *testing.T) {
	sut, driver, console := newConnectedSession(t)

	gomock.InOrder(
		driver.EXPECT().QueryString(`SYS;SEQ:EXEC:IMM:HSN? "SEQ:EXEC:TST:STAT ON;VSA1;INIT"`).Return("0", nil),
		driver.EXPECT().QueryBlock("SYS;FORM:READ:DATA ASC;SEQ:EXEC:TST?").Return([]byte("0.000\n0.125\n"), nil),
	)

	result, err := sut.ExecSequence("VSA1;INIT")

	assert.NoError(t, err)
	assert.Equal(t, "0", result.Reply)
	assert.Equal(t, []string{"0.000", "0.125"}, result.Timestamps)

	logged := messages(console)
	assert.Contains(t, logged, "--> SYS;FORM:READ:DATA ASC;SEQ:EXEC:TST?")
	assert.Contains(t, logged, "<-- [0] 0.000")
	assert.Contains(t, logged, "<-- [1] 0.125")
}

func TestSession_QuerySeqTimeStampWithoutTerminator(t *testing.T) {
	sut, driver, _ := newConnectedSession(t)

	driver.EXPECT().QueryBlock("SYS;FORM:READ:DATA ASC;SEQ:EXEC:TST?").Return([]byte(""), nil)

	stamps, err := sut.QuerySeqTimeStamp()

	assert.NoError(t, err)
	assert.Empty(t, stamps)
}
