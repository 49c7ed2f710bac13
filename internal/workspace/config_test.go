package workspace

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{
		Version:        "1",
		DefaultProject: "shop",
		Projects: map[string]Project{
			"shop": {
				Root: "apps/shop",
				Type: ProjectTypeApplication,
				Build: &BuildTarget{
					Options: BuildOptions{
						OutputPath: "dist/shop",
						Main:       "apps/shop/src/main.ts",
						Index:      "apps/shop/src/index.html",
					},
				},
			},
			"admin": {
				Root: "apps/admin",
				Type: ProjectTypeApplication,
				Build: &BuildTarget{
					Options: BuildOptions{OutputPath: "dist/admin"},
				},
			},
		},
	}
}

func TestResolveProject_ExplicitName(t *testing.T) {
	cfg := testConfig()

	name, project, err := cfg.ResolveProject("admin")
	require.NoError(t, err)
	require.Equal(t, "admin", name)
	require.Equal(t, "apps/admin", project.Root)
}

func TestResolveProject_FallsBackToDefault(t *testing.T) {
	cfg := testConfig()

	name, project, err := cfg.ResolveProject("")
	require.NoError(t, err)
	require.Equal(t, "shop", name)
	require.Equal(t, "apps/shop", project.Root)
}

func TestResolveProject_NoNameNoDefault_Fails(t *testing.T) {
	cfg := testConfig()
	cfg.DefaultProject = ""

	_, _, err := cfg.ResolveProject("")
	require.Error(t, err)
	require.Contains(t, err.Error(), "no default project")
}

func TestResolveProject_UnknownName_Fails(t *testing.T) {
	cfg := testConfig()

	_, _, err := cfg.ResolveProject("missing")
	require.Error(t, err)
	require.Contains(t, err.Error(), "not found")
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig()

	require.NoError(t, cfg.Save(dir))

	loaded, err := LoadConfig(dir)
	require.NoError(t, err)
	require.Equal(t, cfg.DefaultProject, loaded.DefaultProject)
	require.Len(t, loaded.Projects, 2)
	require.Equal(t, "dist/shop", loaded.Projects["shop"].Build.Options.OutputPath)
}

func TestLoadConfigFrom_MissingFile(t *testing.T) {
	_, err := LoadConfigFrom(filepath.Join(t.TempDir(), ConfigFileName))
	require.Error(t, err)
}

func TestValidator_AcceptsWellFormedConfig(t *testing.T) {
	require.NoError(t, NewValidator().Validate(testConfig()))
}

func TestValidator_RejectsBadProjectName(t *testing.T) {
	cfg := testConfig()
	cfg.Projects["Shop App"] = Project{Root: "apps/x", Type: ProjectTypeApplication}

	err := NewValidator().Validate(cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "kebab-case")
}

func TestValidator_RejectsDanglingDefaultProject(t *testing.T) {
	cfg := testConfig()
	cfg.DefaultProject = "gone"

	err := NewValidator().Validate(cfg)
	require.Error(t, err)
}

func TestValidator_RejectsEscapingOutputPath(t *testing.T) {
	for _, p := range []string{"/var/www", "../outside", "dist/../.."} {
		cfg := testConfig()
		project := cfg.Projects["shop"]
		project.Build = &BuildTarget{Options: BuildOptions{OutputPath: p}}
		cfg.Projects["shop"] = project

		err := NewValidator().Validate(cfg)
		require.Error(t, err, "outputPath %q should be rejected", p)
	}
}

func TestValidator_ServiceWorkerRequiresIndex(t *testing.T) {
	cfg := testConfig()
	project := cfg.Projects["admin"]
	project.Build.Options.ServiceWorker = true
	cfg.Projects["admin"] = project

	err := NewValidator().Validate(cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "serviceWorker")
}
