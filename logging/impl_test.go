package logging

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
	"go.viam.com/test"
)

func TestObservedLevels(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	logger.Debug("debug")
	logger.Infof("info %d", 1)
	logger.Warnw("warn", "key", "value")

	test.That(t, logs.Len(), test.ShouldEqual, 3)
	test.That(t, logs.FilterLevelExact(zapcore.WarnLevel).Len(), test.ShouldEqual, 1)
	warn := logs.FilterLevelExact(zapcore.WarnLevel).All()[0]
	test.That(t, warn.Message, test.ShouldEqual, "warn")
	test.That(t, warn.ContextMap()["key"], test.ShouldEqual, "value")
	test.That(t, logs.FilterMessage("info 1").Len(), test.ShouldEqual, 1)

	logger.SetLevel(WARN)
	logger.Info("dropped")
	logger.Error("kept")
	test.That(t, logs.Len(), test.ShouldEqual, 4)
	test.That(t, logger.GetLevel(), test.ShouldEqual, WARN)
}

func TestSubloggerName(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	sub := logger.Sublogger("kinematics").Sublogger("solver")
	sub.Info("hello")
	test.That(t, logs.All()[0].LoggerName, test.ShouldEqual, "kinematics.solver")
}

func TestUnpairedKey(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	logger.Infow("msg", "lonely")
	test.That(t, logs.All()[0].ContextMap()["lonely"], test.ShouldContainSubstring, "unpaired")
}

func TestFileAppender(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	file, err := os.Create(path)
	test.That(t, err, test.ShouldBeNil)
	defer file.Close()

	logger := NewBlankLogger("file")
	logger.AddAppender(NewFileAppender(file))
	logger.Infow("written", "joints", 7)
	test.That(t, logger.Sync(), test.ShouldBeNil)

	readBack, err := os.Open(path)
	test.That(t, err, test.ShouldBeNil)
	defer readBack.Close()
	scanner := bufio.NewScanner(readBack)
	test.That(t, scanner.Scan(), test.ShouldBeTrue)
	parts := strings.Split(scanner.Text(), "\t")
	test.That(t, parts[1], test.ShouldEqual, "INFO")
	test.That(t, parts[2], test.ShouldEqual, "file")
	test.That(t, parts[3], test.ShouldContainSubstring, "logging/impl_test.go:")
	test.That(t, parts[4], test.ShouldEqual, "written")
	test.That(t, parts[5], test.ShouldEqual, `{"joints":7}`)
}

func TestLevelFromString(t *testing.T) {
	level, err := LevelFromString("WARN")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, level, test.ShouldEqual, WARN)
	test.That(t, level.AsZap(), test.ShouldEqual, zapcore.WarnLevel)

	_, err = LevelFromString("loud")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestWithFields(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	tipLogger := logger.With("tip", "panda_link7")
	tipLogger.Warnw("solve failed", "term", "gravity")
	logger.Info("plain")

	ctx := logs.All()[0].ContextMap()
	test.That(t, ctx["tip"], test.ShouldEqual, "panda_link7")
	test.That(t, ctx["term"], test.ShouldEqual, "gravity")
	test.That(t, logs.All()[1].ContextMap(), test.ShouldBeEmpty)

	// Persistent fields survive into subloggers.
	tipLogger.Sublogger("publisher").Info("sub")
	test.That(t, logs.All()[2].ContextMap()["tip"], test.ShouldEqual, "panda_link7")
}
