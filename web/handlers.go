package web

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/lwittmann/cosmoview/export"
	"github.com/lwittmann/cosmoview/status"
	"github.com/lwittmann/cosmoview/webutils"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type artifactInfo struct {
	Name string
	WRL  bool
	GLB  bool
	PNG  bool
	PQR  bool
}

func artifactFor(name string) artifactInfo {
	exists := func(ext string) bool {
		_, err := os.Stat(filepath.Join(ServerDirectory, name+ext))
		return err == nil
	}
	return artifactInfo{
		Name: name,
		WRL:  exists(".wrl"),
		GLB:  exists(".glb"),
		PNG:  exists(".png"),
		PQR:  exists(".pqr"),
	}
}

func HandlerList(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(ServerDirectory)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".wrl") {
			names = append(names, strings.TrimSuffix(e.Name(), ".wrl"))
		}
	}
	sort.Strings(names)

	list := make([]artifactInfo, 0, len(names))
	for _, name := range names {
		list = append(list, artifactFor(name))
	}
	webutils.WriteJson(w, list)
}

func HandlerMeshInfo(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	info := artifactFor(name)
	if !info.WRL {
		webutils.WriteError(w, errors.Errorf("no mesh %q", name))
		return
	}

	f, err := os.Open(filepath.Join(ServerDirectory, name+".wrl"))
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	defer f.Close()

	colors, err := export.ParseVRMLColors(f)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}

	webutils.WriteJson(w, struct {
		artifactInfo
		Faces int
	}{artifactInfo: info, Faces: len(colors)})
}

func HandlerDumpFile(w http.ResponseWriter, r *http.Request) {
	file := filepath.Base(mux.Vars(r)["file"])
	f, err := os.Open(filepath.Join(ServerDirectory, file))
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	defer f.Close()
	webutils.WriteFile(w, f, file)
}

func HandlerStatusWs(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[web] ws upgrade error: %v", err)
		return
	}
	status.NewClient(conn)
}
