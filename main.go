// Package main provides the entry point for the Ink Canvas application.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"

	"ink-canvas/internal/api"
	"ink-canvas/internal/app"
	"ink-canvas/internal/canvas"
	"ink-canvas/internal/ocr"
	"ink-canvas/internal/version"
	"ink-canvas/ui/mainwindow"
	"ink-canvas/ui/prefs"
)

const appTitle = "Ink Canvas"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting %s v%s", appTitle, version.Version)

	appPrefs := prefs.Load()

	serverURL := flag.String("server", "", "notes server base URL")
	canvasID := flag.String("canvas", "", "canvas id to open")
	title := flag.String("title", "Untitled", "canvas title")
	noOCR := flag.Bool("no-ocr", false, "disable the OCR capture hint")
	flag.Parse()

	if *serverURL == "" {
		*serverURL = os.Getenv("INK_SERVER_URL")
	}
	if *serverURL == "" {
		*serverURL = appPrefs.String(prefs.KeyServerURL)
	}
	if *serverURL == "" {
		*serverURL = "http://localhost:3000"
	}
	if *canvasID == "" {
		*canvasID = appPrefs.String(prefs.KeyLastCanvas)
	}

	store := canvas.NewStore()
	client := api.NewClient(*serverURL)
	session := app.NewSession(store, client, *canvasID, *title)

	if !*noOCR {
		engine, err := ocr.NewEngine()
		if err != nil {
			log.Printf("OCR unavailable: %v", err)
		} else {
			session.SetOCR(engine)
			defer engine.Close()
		}
	}

	if *canvasID != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		if err := session.Load(ctx); err != nil {
			log.Printf("Failed to load canvas %s: %v", *canvasID, err)
		}
		cancel()
		appPrefs.SetString(prefs.KeyLastCanvas, *canvasID)
	}
	session.Start()
	defer session.Close()

	fyneApp := fyneapp.NewWithID("io.inkcanvas.app")
	fyneApp.Settings().SetTheme(&app.InkTheme{})

	win := mainwindow.New(fyneApp, store, session, appPrefs)

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
