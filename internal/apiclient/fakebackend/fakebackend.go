// Package fakebackend 提供内存版 REST 后端，供各层测试使用
package fakebackend

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/mariamguerraf/Systeme-de-Gestion-des-Ressources-Humaines-et-des-Demandes-Administratives-sub000/internal/model"
)

// 种子账号（密码均为 password123）
const (
	AdminEmail         = "admin@gestion.com"
	SecretaireEmail    = "secretaire@gestion.com"
	EnseignantEmail    = "enseignant@gestion.com"
	FonctionnaireEmail = "fonctionnaire@gestion.com"
	Password           = "password123"
)

type account struct {
	user     model.User
	password string
	role     string // 原样返回的角色字符串，用于验证规范化
}

type storedDoc struct {
	meta    model.Document
	content []byte
}

// Backend 内存后端
type Backend struct {
	Server *httptest.Server

	mu             sync.Mutex
	accounts       map[int64]*account
	tokens         map[string]int64
	enseignants    map[int64]*model.Enseignant
	fonctionnaires map[int64]*model.Fonctionnaire
	demandes       []*model.Demande
	docs           map[int64][]storedDoc
	nextID         int64
	nextToken      int
	calls          map[string]int
}

// New 启动内存后端并写入种子账号，测试结束时自动关闭
func New(t interface{ Cleanup(func()) }) *Backend {
	b := &Backend{
		accounts:       make(map[int64]*account),
		tokens:         make(map[string]int64),
		enseignants:    make(map[int64]*model.Enseignant),
		fonctionnaires: make(map[int64]*model.Fonctionnaire),
		docs:           make(map[int64][]storedDoc),
		nextID:         1,
		calls:          make(map[string]int),
	}
	b.addAccount(AdminEmail, "ADMIN", "Admin", "Système")
	b.addAccount(SecretaireEmail, "secretaire", "Bennani", "Salma")
	b.addAccount(EnseignantEmail, "Enseignant", "Alaoui", "Karim")
	b.addAccount(FonctionnaireEmail, "fonctionnaire", "Idrissi", "Nadia")

	b.Server = httptest.NewServer(b.routes())
	t.Cleanup(b.Server.Close)
	return b
}

// URL 后端基础地址
func (b *Backend) URL() string { return b.Server.URL }

// Calls 返回某个 "METHOD pattern" 被调用的次数
func (b *Backend) Calls(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[route]
}

// UserByEmail 返回账号对应的用户
func (b *Backend) UserByEmail(email string) model.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, a := range b.accounts {
		if a.user.Email == email {
			return a.user
		}
	}
	return model.User{}
}

// RevokeAll 使所有已签发 Token 失效
func (b *Backend) RevokeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens = make(map[string]int64)
}

// IssueToken 直接为账号签发 Token（模拟浏览器中已持久化的 Token）
func (b *Backend) IssueToken(email string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, a := range b.accounts {
		if a.user.Email == email {
			return b.issueLocked(id)
		}
	}
	return ""
}

// SeedDemande 直接写入一条申请
func (b *Backend) SeedDemande(ownerEmail string, d model.Demande) model.Demande {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, a := range b.accounts {
		if a.user.Email == ownerEmail {
			d.UserID = a.user.ID
		}
	}
	d.ID = b.allocLocked()
	if d.Statut == "" {
		d.Statut = model.StatutEnAttente
	}
	cp := d
	b.demandes = append(b.demandes, &cp)
	return cp
}

func (b *Backend) addAccount(email, role, nom, prenom string) {
	id := b.allocLocked()
	b.accounts[id] = &account{
		user: model.User{
			ID:        id,
			Email:     email,
			Nom:       nom,
			Prenom:    prenom,
			Role:      model.ParseRole(role),
			IsActive:  true,
			CreatedAt: "2024-09-01T08:00:00",
		},
		password: Password,
		role:     role,
	}
}

func (b *Backend) allocLocked() int64 {
	id := b.nextID
	b.nextID++
	return id
}

func (b *Backend) issueLocked(userID int64) string {
	b.nextToken++
	tok := fmt.Sprintf("tok-%d-%d", userID, b.nextToken)
	b.tokens[tok] = userID
	return tok
}

// ── HTTP ──

func (b *Backend) routes() http.Handler {
	mux := http.NewServeMux()
	handle := func(pattern string, fn func(w http.ResponseWriter, r *http.Request)) {
		mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
			b.mu.Lock()
			b.calls[pattern]++
			b.mu.Unlock()
			fn(w, r)
		})
	}

	handle("POST /auth/login", b.login)
	handle("GET /users/me", b.authed(b.me))
	handle("GET /users", b.authed(b.listUsers))
	handle("GET /users/{id}", b.authed(b.getUser))
	handle("DELETE /users/{id}", b.authed(b.deleteUser))

	handle("GET /users/enseignants", b.authed(b.listEnseignants))
	handle("POST /users/enseignants", b.authed(b.createEnseignant))
	handle("GET /users/enseignants/{id}", b.authed(b.getEnseignant))
	handle("PUT /users/enseignants/{id}", b.authed(b.updateEnseignant))
	handle("DELETE /users/enseignants/{id}", b.authed(b.deleteEnseignant))

	handle("GET /users/fonctionnaires", b.authed(b.listFonctionnaires))
	handle("POST /users/fonctionnaires", b.authed(b.createFonctionnaire))
	handle("GET /users/fonctionnaires/{id}", b.authed(b.getFonctionnaire))
	handle("PUT /users/fonctionnaires/{id}", b.authed(b.updateFonctionnaire))
	handle("DELETE /users/fonctionnaires/{id}", b.authed(b.deleteFonctionnaire))
	handle("POST /users/fonctionnaires/{id}/upload-photo", b.authed(b.uploadPhoto))

	handle("GET /demandes", b.authed(b.listDemandes))
	handle("GET /demandes/me", b.authed(b.listMyDemandes))
	handle("POST /demandes", b.authed(b.createDemande))
	handle("GET /demandes/{id}", b.authed(b.getDemande))
	handle("PUT /demandes/{id}", b.authed(b.decideDemande))
	handle("DELETE /demandes/{id}", b.authed(b.deleteDemande))
	handle("POST /demandes/{id}/upload-documents", b.authed(b.uploadDocuments))
	handle("GET /demandes/{id}/documents/{docId}/download", b.authed(b.download))
	return mux
}

type authedHandler func(w http.ResponseWriter, r *http.Request, me *account)

func (b *Backend) authed(fn authedHandler) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		tok := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		b.mu.Lock()
		id, ok := b.tokens[tok]
		var me *account
		if ok {
			me = b.accounts[id]
		}
		b.mu.Unlock()
		if me == nil {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		fn(w, r, me)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func pathID(r *http.Request, name string) int64 {
	id, _ := strconv.ParseInt(r.PathValue(name), 10, 64)
	return id
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid form")
		return
	}
	email, pwd := r.PostForm.Get("username"), r.PostForm.Get("password")

	b.mu.Lock()
	defer b.mu.Unlock()
	for id, a := range b.accounts {
		if a.user.Email == email && a.password == pwd {
			writeJSON(w, http.StatusOK, model.TokenPair{AccessToken: b.issueLocked(id), TokenType: "bearer"})
			return
		}
	}
	writeDetail(w, http.StatusUnauthorized, "Incorrect username or password")
}

// userJSON 以后端原始角色字符串输出用户
func userJSON(a *account) map[string]any {
	return map[string]any{
		"id":         a.user.ID,
		"email":      a.user.Email,
		"nom":        a.user.Nom,
		"prenom":     a.user.Prenom,
		"telephone":  a.user.Telephone,
		"cin":        a.user.CIN,
		"role":       a.role,
		"is_active":  a.user.IsActive,
		"created_at": a.user.CreatedAt,
	}
}

func (b *Backend) me(w http.ResponseWriter, _ *http.Request, me *account) {
	writeJSON(w, http.StatusOK, userJSON(me))
}

func (b *Backend) listUsers(w http.ResponseWriter, _ *http.Request, _ *account) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]map[string]any, 0, len(b.accounts))
	for id := int64(1); id < b.nextID; id++ {
		if a, ok := b.accounts[id]; ok {
			out = append(out, userJSON(a))
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) getUser(w http.ResponseWriter, r *http.Request, _ *account) {
	b.mu.Lock()
	defer b.mu.Unlock()
	a, ok := b.accounts[pathID(r, "id")]
	if !ok {
		writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, userJSON(a))
}

func (b *Backend) deleteUser(w http.ResponseWriter, r *http.Request, me *account) {
	if me.user.Role != model.RoleAdmin {
		writeDetail(w, http.StatusForbidden, "Not enough permissions")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	id := pathID(r, "id")
	if _, ok := b.accounts[id]; !ok {
		writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	delete(b.accounts, id)
	w.WriteHeader(http.StatusNoContent)
}

// createAccountLocked 创建教师/公务员时隐式创建 User，邮箱或 CIN 重复时返回错误消息
func (b *Backend) createAccountLocked(in model.StaffCreate, role string) (*account, string) {
	for _, a := range b.accounts {
		if a.user.Email == in.Email {
			return nil, "Email already exists"
		}
		if in.CIN != "" && a.user.CIN == in.CIN {
			return nil, "CIN already exists"
		}
	}
	id := b.allocLocked()
	a := &account{
		user: model.User{
			ID: id, Email: in.Email, Nom: in.Nom, Prenom: in.Prenom,
			Telephone: in.Telephone, Adresse: in.Adresse, CIN: in.CIN,
			Role: model.ParseRole(role), IsActive: true,
		},
		password: in.Password,
		role:     role,
	}
	b.accounts[id] = a
	return a, ""
}

func decode(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func (b *Backend) listEnseignants(w http.ResponseWriter, _ *http.Request, _ *account) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]model.Enseignant, 0, len(b.enseignants))
	for id := int64(1); id < b.nextID; id++ {
		if e, ok := b.enseignants[id]; ok {
			out = append(out, *e)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) createEnseignant(w http.ResponseWriter, r *http.Request, _ *account) {
	var in model.StaffCreate
	if err := decode(r, &in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	a, msg := b.createAccountLocked(in, "enseignant")
	if a == nil {
		writeDetail(w, http.StatusBadRequest, msg)
		return
	}
	u := a.user
	e := &model.Enseignant{ID: b.allocLocked(), UserID: u.ID, Specialite: in.Specialite, Grade: in.Grade, Etablissement: in.Etablissement, User: &u}
	b.enseignants[e.ID] = e
	writeJSON(w, http.StatusCreated, e)
}

func (b *Backend) getEnseignant(w http.ResponseWriter, r *http.Request, _ *account) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.enseignants[pathID(r, "id")]
	if !ok {
		writeDetail(w, http.StatusNotFound, "Enseignant not found")
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (b *Backend) updateEnseignant(w http.ResponseWriter, r *http.Request, _ *account) {
	var in model.StaffUpdate
	if err := decode(r, &in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.enseignants[pathID(r, "id")]
	if !ok {
		writeDetail(w, http.StatusNotFound, "Enseignant not found")
		return
	}
	if in.Specialite != nil {
		e.Specialite = *in.Specialite
	}
	if in.Grade != nil {
		e.Grade = *in.Grade
	}
	if in.Etablissement != nil {
		e.Etablissement = *in.Etablissement
	}
	if in.Nom != nil && e.User != nil {
		e.User.Nom = *in.Nom
	}
	writeJSON(w, http.StatusOK, e)
}

func (b *Backend) deleteEnseignant(w http.ResponseWriter, r *http.Request, _ *account) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := pathID(r, "id")
	e, ok := b.enseignants[id]
	if !ok {
		writeDetail(w, http.StatusNotFound, "Enseignant not found")
		return
	}
	delete(b.accounts, e.UserID)
	delete(b.enseignants, id)
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) listFonctionnaires(w http.ResponseWriter, _ *http.Request, _ *account) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]model.Fonctionnaire, 0, len(b.fonctionnaires))
	for id := int64(1); id < b.nextID; id++ {
		if f, ok := b.fonctionnaires[id]; ok {
			out = append(out, *f)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) createFonctionnaire(w http.ResponseWriter, r *http.Request, _ *account) {
	var in model.StaffCreate
	if err := decode(r, &in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	a, msg := b.createAccountLocked(in, "fonctionnaire")
	if a == nil {
		writeDetail(w, http.StatusBadRequest, msg)
		return
	}
	u := a.user
	f := &model.Fonctionnaire{ID: b.allocLocked(), UserID: u.ID, Service: in.Service, Poste: in.Poste, Grade: in.Grade, User: &u}
	b.fonctionnaires[f.ID] = f
	writeJSON(w, http.StatusCreated, f)
}

func (b *Backend) getFonctionnaire(w http.ResponseWriter, r *http.Request, _ *account) {
	b.mu.Lock()
	defer b.mu.Unlock()
	f, ok := b.fonctionnaires[pathID(r, "id")]
	if !ok {
		writeDetail(w, http.StatusNotFound, "Fonctionnaire not found")
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (b *Backend) updateFonctionnaire(w http.ResponseWriter, r *http.Request, _ *account) {
	var in model.StaffUpdate
	if err := decode(r, &in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	f, ok := b.fonctionnaires[pathID(r, "id")]
	if !ok {
		writeDetail(w, http.StatusNotFound, "Fonctionnaire not found")
		return
	}
	if in.Service != nil {
		f.Service = *in.Service
	}
	if in.Poste != nil {
		f.Poste = *in.Poste
	}
	if in.Grade != nil {
		f.Grade = *in.Grade
	}
	writeJSON(w, http.StatusOK, f)
}

func (b *Backend) deleteFonctionnaire(w http.ResponseWriter, r *http.Request, _ *account) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := pathID(r, "id")
	f, ok := b.fonctionnaires[id]
	if !ok {
		writeDetail(w, http.StatusNotFound, "Fonctionnaire not found")
		return
	}
	delete(b.accounts, f.UserID)
	delete(b.fonctionnaires, id)
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) uploadPhoto(w http.ResponseWriter, r *http.Request, _ *account) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "file is required")
		return
	}
	file.Close()
	b.mu.Lock()
	defer b.mu.Unlock()
	f, ok := b.fonctionnaires[pathID(r, "id")]
	if !ok {
		writeDetail(w, http.StatusNotFound, "Fonctionnaire not found")
		return
	}
	f.Photo = "/uploads/photos/" + header.Filename
	writeJSON(w, http.StatusOK, f)
}

func (b *Backend) listDemandes(w http.ResponseWriter, _ *http.Request, me *account) {
	if !me.user.Role.IsReviewer() {
		writeDetail(w, http.StatusForbidden, "Not enough permissions")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]model.Demande, 0, len(b.demandes))
	for _, d := range b.demandes {
		out = append(out, *d)
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) listMyDemandes(w http.ResponseWriter, _ *http.Request, me *account) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]model.Demande, 0)
	for _, d := range b.demandes {
		if d.UserID == me.user.ID {
			out = append(out, *d)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) findLocked(id int64) (int, *model.Demande) {
	for i, d := range b.demandes {
		if d.ID == id {
			return i, d
		}
	}
	return -1, nil
}

func (b *Backend) createDemande(w http.ResponseWriter, r *http.Request, me *account) {
	var in model.DemandeCreate
	if err := decode(r, &in); err != nil || in.Titre == "" || !in.TypeDemande.Valid() {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid demande")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	d := &model.Demande{
		ID:          b.allocLocked(),
		UserID:      me.user.ID,
		TypeDemande: in.TypeDemande,
		Titre:       in.Titre,
		Description: in.Description,
		DateDebut:   in.DateDebut,
		DateFin:     in.DateFin,
		Statut:      model.StatutEnAttente,
		CreatedAt:   "2024-10-01T09:00:00",
	}
	b.demandes = append(b.demandes, d)
	writeJSON(w, http.StatusCreated, d)
}

func (b *Backend) getDemande(w http.ResponseWriter, r *http.Request, _ *account) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, d := b.findLocked(pathID(r, "id"))
	if d == nil {
		writeDetail(w, http.StatusNotFound, "Demande not found")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (b *Backend) decideDemande(w http.ResponseWriter, r *http.Request, me *account) {
	if !me.user.Role.IsReviewer() {
		writeDetail(w, http.StatusForbidden, "Not enough permissions")
		return
	}
	var in model.DemandeDecision
	if err := decode(r, &in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	_, d := b.findLocked(pathID(r, "id"))
	if d == nil {
		writeDetail(w, http.StatusNotFound, "Demande not found")
		return
	}
	d.Statut = in.Statut
	d.CommentaireAdmin = in.CommentaireAdmin
	writeJSON(w, http.StatusOK, d)
}

func (b *Backend) deleteDemande(w http.ResponseWriter, r *http.Request, me *account) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i, d := b.findLocked(pathID(r, "id"))
	if d == nil {
		writeDetail(w, http.StatusNotFound, "Demande not found")
		return
	}
	if d.UserID != me.user.ID && me.user.Role != model.RoleAdmin {
		writeDetail(w, http.StatusForbidden, "Not enough permissions")
		return
	}
	b.demandes = append(b.demandes[:i], b.demandes[i+1:]...)
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) uploadDocuments(w http.ResponseWriter, r *http.Request, _ *account) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid multipart")
		return
	}
	id := pathID(r, "id")
	b.mu.Lock()
	_, d := b.findLocked(id)
	b.mu.Unlock()
	if d == nil {
		writeDetail(w, http.StatusNotFound, "Demande not found")
		return
	}

	var added []model.Document
	for _, fh := range r.MultipartForm.File["files"] {
		f, err := fh.Open()
		if err != nil {
			writeDetail(w, http.StatusBadRequest, "unreadable file")
			return
		}
		content, _ := io.ReadAll(f)
		f.Close()

		b.mu.Lock()
		doc := model.Document{ID: b.allocLocked(), Filename: fh.Filename, FileSize: int64(len(content)), MimeType: fh.Header.Get("Content-Type")}
		b.docs[id] = append(b.docs[id], storedDoc{meta: doc, content: content})
		d.Documents = append(d.Documents, doc)
		b.mu.Unlock()
		added = append(added, doc)
	}
	writeJSON(w, http.StatusOK, added)
}

func (b *Backend) download(w http.ResponseWriter, r *http.Request, _ *account) {
	id, docID := pathID(r, "id"), pathID(r, "docId")
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sd := range b.docs[id] {
		if sd.meta.ID == docID {
			w.Header().Set("Content-Type", sd.meta.MimeType)
			w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, sd.meta.Filename))
			_, _ = w.Write(sd.content)
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "Document not found")
}
