package service

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"ecommerce-backend/internal/apperror"
	"ecommerce-backend/internal/models"
)

type fakeUsers struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[primitive.ObjectID]*models.User{}}
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return apperror.Conflict("User already exists, please login")
		}
	}
	u.ID = primitive.NewObjectID()
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("User not found")
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.NotFound("User not found")
}

func (f *fakeUsers) UpdateProfile(_ context.Context, id primitive.ObjectID, p models.ProfileUpdate) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("User not found")
	}
	u.Name, u.Phone, u.Address, u.PasswordHash = p.Name, p.Phone, p.Address, p.PasswordHash
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id primitive.ObjectID, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return apperror.NotFound("User not found")
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeUsers) Summaries(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.BuyerSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[primitive.ObjectID]*models.BuyerSummary{}
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out[id] = &models.BuyerSummary{ID: u.ID, Name: u.Name, Email: u.Email}
		}
	}
	return out, nil
}

// plainHasher keeps tests fast; the bcrypt hasher is covered in package auth.
type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error) { return "hashed:" + p, nil }
func (plainHasher) Verify(p, digest string) bool   { return digest == "hashed:"+p }

type fakeCategories struct {
	mu         sync.Mutex
	categories []*models.Category
}

func (f *fakeCategories) Create(_ context.Context, c *models.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.categories {
		if existing.Name == c.Name || existing.Slug == c.Slug {
			return apperror.Conflict("Category already exists")
		}
	}
	c.ID = primitive.NewObjectID()
	cp := *c
	f.categories = append(f.categories, &cp)
	return nil
}

func (f *fakeCategories) Exists(_ context.Context, name, slug string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.categories {
		if c.Name == name || c.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCategories) FindAll(_ context.Context) ([]models.Category, error) {
	return f.filter(func(*models.Category) bool { return true }), nil
}

func (f *fakeCategories) FindByOwner(_ context.Context, owner primitive.ObjectID) ([]models.Category, error) {
	return f.filter(func(c *models.Category) bool { return c.CreatedBy == owner }), nil
}

func (f *fakeCategories) FindByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Category, error) {
	out := map[primitive.ObjectID]*models.Category{}
	for _, c := range f.filter(func(*models.Category) bool { return true }) {
		for _, id := range ids {
			if c.ID == id {
				cp := c
				out[id] = &cp
			}
		}
	}
	return out, nil
}

func (f *fakeCategories) FindBySlug(_ context.Context, slug string) (*models.Category, error) {
	found := f.filter(func(c *models.Category) bool { return c.Slug == slug })
	if len(found) == 0 {
		return nil, apperror.NotFound("Category not found")
	}
	return &found[0], nil
}

func (f *fakeCategories) UpdateOwned(_ context.Context, id, owner primitive.ObjectID, name, slug string) (*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.categories {
		if c.ID == id && c.CreatedBy == owner {
			c.Name, c.Slug = name, slug
			cp := *c
			return &cp, nil
		}
	}
	return nil, apperror.NotFound(msgCategoryNotOwned)
}

func (f *fakeCategories) DeleteOwned(_ context.Context, id, owner primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, c := range f.categories {
		if c.ID == id && c.CreatedBy == owner {
			f.categories = append(f.categories[:i], f.categories[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound(msgCategoryNotOwned)
}

func (f *fakeCategories) filter(keep func(*models.Category) bool) []models.Category {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Category{}
	for _, c := range f.categories {
		if keep(c) {
			out = append(out, *c)
		}
	}
	return out
}

type fakeProducts struct {
	mu       sync.Mutex
	products []*models.Product
	// decrementErr makes DecrementStock fail after applying nothing.
	decrementErr error
}

func (f *fakeProducts) add(p models.Product) *models.Product {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	p.CreatedAt = time.Now()
	f.products = append(f.products, &p)
	return &p
}

func (f *fakeProducts) get(id primitive.ObjectID) *models.Product {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.products {
		if p.ID == id {
			cp := *p
			return &cp
		}
	}
	return nil
}

func (f *fakeProducts) remove(id primitive.ObjectID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.products {
		if p.ID == id {
			f.products = append(f.products[:i], f.products[i+1:]...)
			return
		}
	}
}

func (f *fakeProducts) Create(_ context.Context, p *models.Product) error {
	p.ID = primitive.NewObjectID()
	f.add(*p)
	return nil
}

func (f *fakeProducts) SlugExists(_ context.Context, slug string, exclude primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.products {
		if p.Slug == slug && p.ID != exclude {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeProducts) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	if p := f.get(id); p != nil {
		return p, nil
	}
	return nil, apperror.NotFound(msgProductNotFound)
}

func (f *fakeProducts) FindOwned(_ context.Context, id, owner primitive.ObjectID) (*models.Product, error) {
	if p := f.get(id); p != nil && p.CreatedBy == owner {
		return p, nil
	}
	return nil, apperror.NotFound(msgProductNotOwned)
}

func (f *fakeProducts) FindBySlug(_ context.Context, slug string) (*models.Product, error) {
	found := f.filter(func(p *models.Product) bool { return p.Slug == slug })
	if len(found) == 0 {
		return nil, apperror.NotFound(msgProductNotFound)
	}
	return &found[0], nil
}

func (f *fakeProducts) FindByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Product, error) {
	out := map[primitive.ObjectID]*models.Product{}
	for _, id := range ids {
		if p := f.get(id); p != nil {
			out[id] = p
		}
	}
	return out, nil
}

func (f *fakeProducts) FindByOwner(_ context.Context, owner primitive.ObjectID) ([]models.Product, error) {
	return f.filter(func(p *models.Product) bool { return p.CreatedBy == owner }), nil
}

func (f *fakeProducts) IDsByOwner(ctx context.Context, owner primitive.ObjectID) ([]primitive.ObjectID, error) {
	products, _ := f.FindByOwner(ctx, owner)
	ids := make([]primitive.ObjectID, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	return ids, nil
}

func (f *fakeProducts) Find(_ context.Context, flt models.ProductFilter) ([]models.Product, error) {
	kw := strings.ToLower(strings.TrimSpace(flt.Keyword))
	return f.filter(func(p *models.Product) bool {
		if kw != "" && !strings.Contains(strings.ToLower(p.Name), kw) && !strings.Contains(strings.ToLower(p.Description), kw) {
			return false
		}
		if len(flt.CategoryIDs) > 0 {
			in := false
			for _, c := range flt.CategoryIDs {
				in = in || c == p.Category
			}
			if !in {
				return false
			}
		}
		if flt.PriceRange != nil && (p.Price < flt.PriceRange.Min || p.Price > flt.PriceRange.Max) {
			return false
		}
		if flt.CreatedBy != nil && p.CreatedBy != *flt.CreatedBy {
			return false
		}
		return true
	}), nil
}

func (f *fakeProducts) FindRelated(_ context.Context, pid, cid primitive.ObjectID, limit int64) ([]models.Product, error) {
	out := f.filter(func(p *models.Product) bool { return p.Category == cid && p.ID != pid })
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeProducts) FindAll(_ context.Context, page, pageSize int) ([]models.Product, int64, error) {
	all := f.filter(func(*models.Product) bool { return true })
	for i := range all {
		all[i].Photo = ""
	}
	total := int64(len(all))
	if pageSize > 0 {
		start := (page - 1) * pageSize
		if start > len(all) {
			start = len(all)
		}
		end := start + pageSize
		if end > len(all) {
			end = len(all)
		}
		all = all[start:end]
	}
	return all, total, nil
}

func (f *fakeProducts) UpdateOwned(_ context.Context, u *models.Product) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.products {
		if p.ID == u.ID && p.CreatedBy == u.CreatedBy {
			p.Name, p.Slug, p.Description = u.Name, u.Slug, u.Description
			p.Price, p.Category, p.Quantity, p.Shipping = u.Price, u.Category, u.Quantity, u.Shipping
			if u.Photo != "" {
				p.Photo = u.Photo
			}
			cp := *p
			return &cp, nil
		}
	}
	return nil, apperror.NotFound(msgProductNotOwned)
}

func (f *fakeProducts) DeleteOwned(_ context.Context, id, owner primitive.ObjectID) (*models.Product, error) {
	p := f.get(id)
	if p == nil || p.CreatedBy != owner {
		return nil, apperror.NotFound(msgProductNotOwned)
	}
	f.remove(id)
	return p, nil
}

func (f *fakeProducts) DecrementStock(_ context.Context, decs []models.StockDecrement) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.decrementErr != nil {
		return 0, f.decrementErr
	}
	var matched int64
	for _, d := range decs {
		for _, p := range f.products {
			if p.ID == d.Product && p.Quantity >= d.Quantity {
				p.Quantity -= d.Quantity
				matched++
			}
		}
	}
	return matched, nil
}

// filter returns matches newest first, like the Mongo repository.
func (f *fakeProducts) filter(keep func(*models.Product) bool) []models.Product {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Product{}
	for i := len(f.products) - 1; i >= 0; i-- {
		if keep(f.products[i]) {
			out = append(out, *f.products[i])
		}
	}
	return out
}

type fakeCarts struct {
	mu       sync.Mutex
	carts    map[primitive.ObjectID]*models.Cart
	clearErr error
}

func newFakeCarts() *fakeCarts {
	return &fakeCarts{carts: map[primitive.ObjectID]*models.Cart{}}
}

func (f *fakeCarts) FindByUser(_ context.Context, user primitive.ObjectID) (*models.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.carts[user]
	if !ok {
		return nil, apperror.NotFound(msgCartNotFound)
	}
	cp := *c
	cp.Items = append([]models.CartItem(nil), c.Items...)
	return &cp, nil
}

func (f *fakeCarts) IncrementItem(_ context.Context, user, product primitive.ObjectID, qty int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.carts[user]
	if !ok {
		return false, nil
	}
	for i := range c.Items {
		if c.Items[i].Product == product {
			c.Items[i].Quantity += qty
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCarts) AppendItem(_ context.Context, user primitive.ObjectID, item models.CartItem) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.carts[user]
	if !ok {
		c = &models.Cart{
			ID:        primitive.NewObjectID(),
			User:      user,
			Items:     []models.CartItem{},
			Status:    models.CartActive,
			ExpiresAt: time.Now().Add(models.CartTTL),
		}
		f.carts[user] = c
	}
	if _, exists := c.Item(item.Product); exists {
		return false, nil
	}
	c.Items = append(c.Items, item)
	return true, nil
}

func (f *fakeCarts) RemoveItem(_ context.Context, user, product primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.carts[user]
	if !ok {
		return false, nil
	}
	for i := range c.Items {
		if c.Items[i].Product == product {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCarts) SetItemQuantity(_ context.Context, user, product primitive.ObjectID, qty int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.carts[user]
	if !ok {
		return false, nil
	}
	for i := range c.Items {
		if c.Items[i].Product == product {
			c.Items[i].Quantity = qty
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCarts) Clear(_ context.Context, user primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.clearErr != nil {
		return false, f.clearErr
	}
	c, ok := f.carts[user]
	if !ok {
		return false, nil
	}
	c.Items = []models.CartItem{}
	return true, nil
}

type fakeOrders struct {
	mu     sync.Mutex
	orders []*models.Order
}

func (f *fakeOrders) Create(_ context.Context, o *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o.ID = primitive.NewObjectID()
	o.CreatedAt = time.Now()
	cp := *o
	f.orders = append(f.orders, &cp)
	return nil
}

func (f *fakeOrders) byID(id primitive.ObjectID) *models.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.ID == id {
			cp := *o
			return &cp
		}
	}
	return nil
}

func (f *fakeOrders) FindByBuyer(_ context.Context, buyer primitive.ObjectID) ([]models.Order, error) {
	return f.filter(func(o *models.Order) bool { return o.Buyer == buyer }), nil
}

func (f *fakeOrders) FindAll(_ context.Context) ([]models.Order, error) {
	return f.filter(func(*models.Order) bool { return true }), nil
}

func (f *fakeOrders) FindContainingProducts(_ context.Context, ids []primitive.ObjectID) ([]models.Order, error) {
	return f.filter(func(o *models.Order) bool {
		for _, item := range o.Products {
			for _, id := range ids {
				if item.Product == id {
					return true
				}
			}
		}
		return false
	}), nil
}

func (f *fakeOrders) UpdateStatus(_ context.Context, id primitive.ObjectID, status models.OrderStatus) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.ID == id {
			o.OrderStatus = status
			cp := *o
			return &cp, nil
		}
	}
	return nil, apperror.NotFound(msgOrderNotFound)
}

func (f *fakeOrders) MarkReconciliation(_ context.Context, id primitive.ObjectID, marker models.Reconciliation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.ID == id {
			o.Reconciliation = &marker
			return nil
		}
	}
	return apperror.NotFound(msgOrderNotFound)
}

func (f *fakeOrders) filter(keep func(*models.Order) bool) []models.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Order{}
	for _, o := range f.orders {
		if keep(o) {
			out = append(out, *o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

type fakePhotos struct {
	mu      sync.Mutex
	files   map[string][]byte
	deleted []string
	seq     int
}

func newFakePhotos() *fakePhotos {
	return &fakePhotos{files: map[string][]byte{}}
}

func (f *fakePhotos) Upload(_ context.Context, _, _ string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	ref := "gridfs:" + strings.Repeat("0", 23) + string(rune('0'+f.seq%10))
	f.files[ref] = data
	return ref, nil
}

func (f *fakePhotos) Open(_ context.Context, ref string) (io.ReadCloser, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.files[ref]
	if !ok {
		return nil, "", apperror.NotFound(msgPhotoNotFound)
	}
	return io.NopCloser(bytes.NewReader(data)), "image/png", nil
}

func (f *fakePhotos) Delete(_ context.Context, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.files, ref)
	f.deleted = append(f.deleted, ref)
	return nil
}
