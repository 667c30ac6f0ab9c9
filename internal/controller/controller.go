// Package controller turns page events into fetch and render sequences.
// Each controller owns the state of one page section and writes into a page.Display.
package controller

import (
	"errors"
	"fmt"
	"html/template"

	"github.com/newthinker/finboard/internal/backend"
	"github.com/newthinker/finboard/internal/core"
	"github.com/newthinker/finboard/internal/page"
	"go.uber.org/zap"
)

// MsgPageBroken is alerted when the page lacks a region a controller writes to.
const MsgPageBroken = "Lỗi: Không thể khởi tạo giao diện người dùng. Vui lòng kiểm tra cấu trúc HTML."

// ui applies a sequence of display writes, keeping the first failure.
type ui struct {
	d   page.Display
	err error
}

func (u *ui) html(region string, h template.HTML) {
	if u.err == nil {
		u.err = u.d.SetHTML(region, h)
	}
}

func (u *ui) text(region, s string) {
	if u.err == nil {
		u.err = u.d.SetText(region, s)
	}
}

func (u *ui) show(regions ...string) {
	for _, r := range regions {
		if u.err == nil {
			u.err = u.d.Show(r)
		}
	}
}

func (u *ui) hide(regions ...string) {
	for _, r := range regions {
		if u.err == nil {
			u.err = u.d.Hide(r)
		}
	}
}

// broken reports an environment failure: logged and surfaced as a blocking alert.
func broken(d page.Display, logger *zap.Logger, err error, alert string) {
	if err == nil {
		return
	}
	logger.Error("page is broken", zap.Error(err))
	d.Alert(alert)
}

// payloadMessage returns the message of an explicit {"error": ...} payload.
func payloadMessage(err error) (string, bool) {
	var ce *core.Error
	if errors.As(err, &ce) && ce.Code == core.ErrNoData.Code && ce.Cause == nil {
		return ce.Message, true
	}
	return "", false
}

// errorText returns the user-facing message of a failure.
func errorText(err error) string {
	if fe, ok := backend.AsFetchError(err); ok {
		return fe.Message
	}
	if msg, ok := payloadMessage(err); ok {
		return msg
	}
	var ce *core.Error
	if errors.As(err, &ce) {
		return ce.Message
	}
	return err.Error()
}

// statusText formats an HTTP failure as "Lỗi <status>: <message>".
func statusText(err error) string {
	if fe, ok := backend.AsFetchError(err); ok && fe.Status != 0 {
		return fmt.Sprintf("Lỗi %d: %s", fe.Status, fe.Message)
	}
	return errorText(err)
}

func orNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
