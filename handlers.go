package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes a Manager over HTTP
type Server struct {
	manager  *Manager
	gatherer prometheus.Gatherer
}

// NewServer creates a server; gatherer backs /metrics and may be nil
func NewServer(manager *Manager, gatherer prometheus.Gatherer) *Server {
	return &Server{manager: manager, gatherer: gatherer}
}

// Routes registers every endpoint on a new mux
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/generateGrid", corsMiddleware(s.generateGridHandler))
	mux.HandleFunc("/route", corsMiddleware(s.routeHandler))
	mux.HandleFunc("/nearestNode", corsMiddleware(s.nearestNodeHandler))
	mux.HandleFunc("/furthestNode", corsMiddleware(s.furthestNodeHandler))
	mux.HandleFunc("/spawnAgents", corsMiddleware(s.spawnAgentsHandler))
	mux.HandleFunc("/graphLines", corsMiddleware(s.graphLinesHandler))
	mux.HandleFunc("/health", corsMiddleware(s.healthHandler))
	if s.gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return mux
}

// corsMiddleware adds CORS headers to allow frontend requests
func corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		// Handle preflight
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("⚠️  Failed to encode response: %v\n", err)
	}
}

// NodeView is the JSON form of a node
type NodeView struct {
	ID          int            `json:"id"`
	Position    Vector         `json:"position"`
	Grid        GridCoordinate `json:"grid"`
	Traversable bool           `json:"traversable"`
}

func viewNode(n *NavigationNode) *NodeView {
	if n == nil {
		return nil
	}
	return &NodeView{ID: n.ID, Position: n.Position, Grid: n.GridLocation, Traversable: n.Traversable}
}

// GenerateGridRequest carries either explicit vertices or a heightmap
type GenerateGridRequest struct {
	Width    int             `json:"width"`
	Height   int             `json:"height"`
	Vertices []Vector        `json:"vertices,omitempty"`
	Heights  []float64       `json:"heights,omitempty"`
	Spacing  float64         `json:"spacing,omitempty"`
	Zones    json.RawMessage `json:"zones,omitempty"` // GeoJSON feature collection
}

// POST /generateGrid - Build a navigation grid
func (s *Server) generateGridHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req GenerateGridRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ Invalid request body: %v\n", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	vertices := req.Vertices
	if len(vertices) == 0 {
		spacing := req.Spacing
		if spacing == 0 {
			spacing = 1
		}
		var err error
		vertices, err = GridVertices(req.Width, req.Height, spacing, req.Heights)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	var zones []ObstacleZone
	if len(req.Zones) > 0 {
		var err error
		zones, err = ParseObstacleZones(req.Zones)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	g, err := s.manager.GenerateNodes(r.Context(), vertices, req.Width, req.Height, zones...)
	if err != nil {
		log.Printf("❌ Grid generation failed: %v\n", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":        true,
		"numNodes":       len(g.Nodes),
		"numTraversable": len(g.TraversableNodes),
		"numConnections": g.ConnectionCount(),
		"width":          g.Width,
		"height":         g.Height,
	})
}

// RouteRequest asks for a path between two world positions
type RouteRequest struct {
	Start Vector `json:"start"`
	End   Vector `json:"end"`
}

// RouteResponse is the planned path
type RouteResponse struct {
	Path    []Vector         `json:"path"`
	Cells   []GridCoordinate `json:"cells"`
	Success bool             `json:"success"`
	Message string           `json:"message,omitempty"`
	Length  float64          `json:"length,omitempty"`
}

// POST /route - Compute a path between two positions
func (s *Server) routeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req RouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ Invalid request body: %v\n", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	route, err := s.manager.PlanRoute(r.Context(), req.Start, req.End)
	if errors.Is(err, ErrNoGraph) {
		http.Error(w, "Navigation graph not built. Call /generateGrid first", http.StatusBadRequest)
		return
	}
	if err != nil {
		writeJSON(w, http.StatusOK, RouteResponse{Success: false, Message: err.Error()})
		return
	}

	resp := RouteResponse{
		Path:    make([]Vector, 0, len(route.Path)),
		Cells:   make([]GridCoordinate, 0, len(route.Path)),
		Success: len(route.Path) > 0,
		Length:  route.Length,
	}
	for _, n := range route.Path {
		resp.Path = append(resp.Path, n.Position)
		resp.Cells = append(resp.Cells, n.GridLocation)
	}
	if !resp.Success {
		resp.Message = "No path found"
	} else {
		log.Printf("✅ Path found with %d waypoints, length %.2f\n", len(route.Path), route.Length)
	}

	writeJSON(w, http.StatusOK, resp)
}

func parseLocation(r *http.Request) (Vector, error) {
	var v Vector
	q := r.URL.Query()
	for _, f := range []struct {
		key string
		dst *float64
	}{{"x", &v.X}, {"y", &v.Y}, {"z", &v.Z}} {
		raw := q.Get(f.key)
		if raw == "" {
			continue
		}
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return v, err
		}
		*f.dst = parsed
	}
	return v, nil
}

// GET /nearestNode?x=&y=&z=
func (s *Server) nearestNodeHandler(w http.ResponseWriter, r *http.Request) {
	s.extremalNode(w, r, s.manager.FindNearestNode)
}

// GET /furthestNode?x=&y=&z=
func (s *Server) furthestNodeHandler(w http.ResponseWriter, r *http.Request) {
	s.extremalNode(w, r, s.manager.FindFurthestNode)
}

func (s *Server) extremalNode(w http.ResponseWriter, r *http.Request, find func(Vector) *NavigationNode) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	location, err := parseLocation(r)
	if err != nil {
		http.Error(w, "Invalid location", http.StatusBadRequest)
		return
	}

	node := find(location)
	if node == nil {
		http.Error(w, "No traversable nodes", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, viewNode(node))
}

// SpawnAgentsRequest asks for count agents of a template
type SpawnAgentsRequest struct {
	Count    int            `json:"count"`
	Template *AgentTemplate `json:"template,omitempty"`
}

// POST /spawnAgents
func (s *Server) spawnAgentsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req SpawnAgentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	template := s.manager.Config().AgentTemplate
	if req.Template != nil {
		template = *req.Template
	}

	agents := s.manager.CreateAgents(req.Count, template)

	type agentView struct {
		ID       int       `json:"id"`
		Template string    `json:"template"`
		Position Vector    `json:"position"`
		Node     *NodeView `json:"node"`
	}
	views := make([]agentView, 0, len(agents))
	for _, a := range agents {
		views = append(views, agentView{ID: a.ID, Template: a.Template.Name, Position: a.Position, Node: viewNode(a.CurrentNode)})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": len(agents) == req.Count,
		"agents":  views,
	})
}

// GET /graphLines - Get graph edges as line strings for visualization
func (s *Server) graphLinesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	lines, numNodes, err := s.manager.EdgeLines()
	if err != nil {
		http.Error(w, "Navigation graph not built. Call /generateGrid first", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"lines":    lines,
		"numNodes": numNodes,
		"numEdges": len(lines),
	})
}

// GET /health - Health check endpoint
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	g := s.manager.Graph()
	numNodes := 0
	if g != nil {
		numNodes = len(g.Nodes)
	}

	status := "ready"
	if g == nil || numNodes == 0 {
		status = "waiting for navigation graph"
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    status,
		"hasGraph":  g != nil && numNodes > 0,
		"numNodes":  numNodes,
		"numAgents": len(s.manager.Agents()),
	})
}
