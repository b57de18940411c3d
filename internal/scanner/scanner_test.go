package scanner

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/spf13/afero"
)

func writeFiles(t *testing.T, fs afero.Fs, files ...string) {
	t.Helper()
	for _, f := range files {
		if err := fs.MkdirAll(filepath.Dir(f), 0755); err != nil {
			t.Fatalf("创建目录失败: %v", err)
		}
		if err := afero.WriteFile(fs, f, []byte("x"), 0644); err != nil {
			t.Fatalf("写入文件失败: %v", err)
		}
	}
}

func TestLibraryScanner_Scan(t *testing.T) {
	fs := afero.NewMemMapFs()
	root := "/srv/pub/static"
	theme := filepath.Join(root, "frontend", "Magento", "luma", "en_US")

	writeFiles(t, fs,
		filepath.Join(theme, "mage", "utils", "main.js"),
		filepath.Join(theme, "mage", "utils", "readme.txt"),
		filepath.Join(theme, "fonts", "opensans", "light.woff2"),
		filepath.Join(theme, "fonts", "icons.svg"),
		filepath.Join(theme, "fonts", "upper.JS"),
		filepath.Join(theme, "requirejs-config.js"),
		filepath.Join(theme, "jquery.min.js"),
		filepath.Join(theme, "styles.css"),
		filepath.Join(theme, ".hidden.min.js"),
		filepath.Join(root, "adminhtml", "Magento", "backend", "en_US", "require.js"),
		filepath.Join(root, "frontend", ".git", "x", "y", "bundle.js"),
	)

	s := NewLibraryScanner(fs, root)
	got := s.Scan()

	want := []string{
		"/static/adminhtml/Magento/backend/en_US/require.js",
		"/static/frontend/Magento/luma/en_US/fonts/icons.svg",
		"/static/frontend/Magento/luma/en_US/fonts/opensans/light.woff2",
		"/static/frontend/Magento/luma/en_US/jquery.min.js",
		"/static/frontend/Magento/luma/en_US/mage/utils/main.js",
		"/static/frontend/Magento/luma/en_US/requirejs-config.js",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Scan() =\n%v\nwant\n%v", got, want)
	}
}

func TestLibraryScanner_SoftFail(t *testing.T) {
	tests := []struct {
		name string
		root string
	}{
		{"目录不存在", "/missing/static"},
		{"未配置目录", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewLibraryScanner(afero.NewMemMapFs(), tt.root)
			got := s.Scan()
			if got == nil || len(got) != 0 {
				t.Errorf("Scan() = %v, want 空切片", got)
			}
		})
	}
}

func TestLibraryScanner_Options(t *testing.T) {
	fs := afero.NewMemMapFs()
	root := "/static"
	theme := filepath.Join(root, "frontend", "Vendor", "theme", "de_DE")
	writeFiles(t, fs,
		filepath.Join(theme, "custom", "lib.js"),
		filepath.Join(theme, "mage", "utils", "main.js"),
		filepath.Join(theme, "app.bundle"),
	)

	s := NewLibraryScanner(fs, root,
		WithImportantDirectories([]string{"custom"}),
		WithImportantPatterns([]string{"*.bundle"}),
	)
	want := []string{
		"/static/frontend/Vendor/theme/de_DE/app.bundle",
		"/static/frontend/Vendor/theme/de_DE/custom/lib.js",
	}
	if got := s.Scan(); !reflect.DeepEqual(got, want) {
		t.Errorf("Scan() = %v, want %v", got, want)
	}
}

func TestImportantURLMatcher_Match(t *testing.T) {
	m, err := NewImportantURLMatcher(DefaultImportantURLs)
	if err != nil {
		t.Fatalf("NewImportantURLMatcher() error = %v", err)
	}

	tests := []struct {
		name  string
		asset string
		want  bool
	}{
		{"mixins", "/static/frontend/Magento/luma/en_US/mage/requirejs/mixins.js", true},
		{"跨层级字体", "/static/frontend/Magento/luma/en_US/fonts/opensans/light/x.woff2", true},
		{"大小写不敏感", "/STATIC/frontend/Magento/luma/en_US/jquery.js", true},
		{"带版本号", "/static/version123/frontend/Magento/luma/en_US/knockout.js", false},
		{"后台区域", "/static/adminhtml/Magento/backend/en_US/jquery.js", false},
		{"媒体文件", "/media/catalog/a.jpg", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Match(tt.asset); got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.asset, got, tt.want)
			}
		})
	}
}

func TestNewImportantURLMatcher_Literals(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		wantErr bool
	}{
		{"静态路径", "/static/frontend/Magento/luma/en_US/requirejs/require.js", false},
		{"媒体路径", "/media/logo/default.png", false},
		{"相对路径", "lib/require.js", true},
		{"完整URL", "https://cdn.example/static/x.js", true},
		{"上级目录", "/static/../app/etc/env.php", true},
		{"非资源根", "/checkout/cart.js", true},
		{"通配模式不受限", "*/require.js", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewImportantURLMatcher([]string{tt.pattern})
			if (err != nil) != tt.wantErr {
				t.Errorf("NewImportantURLMatcher(%q) error = %v, wantErr %v", tt.pattern, err, tt.wantErr)
			}
		})
	}
}

func TestImportantURLMatcher_Merge(t *testing.T) {
	m, err := NewImportantURLMatcher([]string{
		"/static/frontend/*/*/*/jquery.js",
		"/static/frontend/Magento/luma/en_US/requirejs/require.js",
		"  ",
	})
	if err != nil {
		t.Fatalf("NewImportantURLMatcher() error = %v", err)
	}
	if lits := m.Literals(); len(lits) != 1 {
		t.Fatalf("Literals() = %v, want 1 个", lits)
	}

	set := map[string]struct{}{
		"/static/frontend/Magento/luma/en_US/jquery.js": {},
		"/media/a.png": {},
	}
	if added := m.Merge(set); added != 1 {
		t.Errorf("Merge() added = %d, want 1", added)
	}
	for _, asset := range []string{
		"/static/frontend/Magento/luma/en_US/jquery.js",
		"/media/a.png",
		"/static/frontend/Magento/luma/en_US/requirejs/require.js",
	} {
		if _, ok := set[asset]; !ok {
			t.Errorf("合并后缺少 %s", asset)
		}
	}

	// 再次合并不新增
	if added := m.Merge(set); added != 0 {
		t.Errorf("重复 Merge() added = %d, want 0", added)
	}
}
