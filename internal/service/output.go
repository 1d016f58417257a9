// SPDX-FileCopyrightText: The deen-companion developers
//
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"encoding/json"
	"os"

	"github.com/NumanSh/deen-companion-unveiled-sub001/internal/logger"
)

type outputData struct {
	Text    string `json:"text"`
	Tooltip string `json:"tooltip"`
	Class   string `json:"class"`
}

// printTimes renders the stored data and writes one JSON line to stdout.
func (s *Service) printTimes(context.Context) {
	s.dataLock.RLock()
	times, qibla, location := s.times, s.qibla, s.location
	s.dataLock.RUnlock()

	if times == nil {
		return
	}

	displayCtx := s.presenter.BuildContext(times, qibla, location, now())
	text, tooltip, err := s.presenter.Render(displayCtx)
	if err != nil {
		s.logger.Error("failed to render output templates", logger.Err(err))
		return
	}

	output := outputData{
		Text:    text,
		Tooltip: tooltip,
		Class:   OutputClass,
	}

	if err = json.NewEncoder(os.Stdout).Encode(output); err != nil {
		s.logger.Error("failed to encode output data", logger.Err(err))
	}
}
