package web

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// ServerDirectory is the output directory whose artifacts the viewer
// serves. Set once by StartServer.
var ServerDirectory string

// StartServer serves the produced meshes and renders: JSON listing,
// artifact downloads and a websocket with pipeline status. Blocks.
func StartServer(addr string, outputDir string) error {
	ServerDirectory = outputDir

	r := mux.NewRouter()
	r.HandleFunc("/json/list", HandlerList)
	r.HandleFunc("/json/mesh/{name}", HandlerMeshInfo)
	r.HandleFunc("/dump/{file}", HandlerDumpFile)
	r.HandleFunc("/ws/status", HandlerStatusWs)

	r.PathPrefix("/").Handler(http.FileServer(http.Dir(outputDir)))

	h := handlers.RecoveryHandler()(r)
	h = handlers.LoggingHandler(os.Stdout, h)

	log.Printf("[web] starting viewer server on %v for %q", addr, outputDir)

	return http.ListenAndServe(addr, h)
}
