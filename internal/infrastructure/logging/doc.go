// Package logging provides structured logging using uber/zap.
//
// Production builds emit JSON; development builds emit coloured console
// output. Components take a *Logger and derive a named child:
//
//	log := logging.NewDefault()
//	vol := log.ForVolume("l1_")
//	vol.Debug("upload skipped", zap.String("name", name), zap.Error(err))
package logging
