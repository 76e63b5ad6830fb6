// Package main provides the entry point for the PixelForge application.
package main

import (
	"log"
	"os"
	"time"

	"pixelforge/internal/app"
	"pixelforge/internal/version"
	"pixelforge/ui/mainwindow"

	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"
)

const appID = "io.pixelforge.editor"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting PixelForge v%s", version.Version)

	fyneApp := fyneapp.NewWithID(appID)
	fyneApp.Settings().SetTheme(&app.PixelForgeTheme{})

	state := app.NewState()
	win := mainwindow.New(fyneApp, state)

	// A project path on the command line wins over session restore.
	if len(os.Args) > 1 {
		if err := state.OpenProject(os.Args[1]); err != nil {
			log.Printf("Failed to open project %s: %v", os.Args[1], err)
		}
	} else {
		win.RestoreLastProject()
	}

	setupHotReload(win)

	win.ShowAndRun()
}

// setupHotReload configures automatic restart detection when the binary
// is recompiled.
func setupHotReload(win *mainwindow.MainWindow) {
	reloader := app.NewHotReloader(2 * time.Second)
	if reloader == nil {
		log.Println("Hot reload: unable to determine executable path")
		return
	}

	log.Printf("Hot reload: watching %s (modified %s)",
		reloader.ExecPath(), reloader.StartupTime().Format("15:04:05"))

	reloader.OnNewBinary(func() {
		log.Println("Hot reload: newer binary detected")
		dialog.ShowConfirm("New Version Available",
			"The application binary has been updated.\nRestart now?",
			func(restart bool) {
				if !restart {
					reloader.ResetBaseline()
					reloader.Start()
					return
				}
				log.Println("Hot reload: restarting...")
				if err := reloader.Restart(); err != nil {
					log.Printf("Hot reload: restart failed: %v", err)
				}
			}, win.Window)
	})

	reloader.Start()
}
