package ecs

import "testing"

// 测试组件类型定义
type testPositionComponent struct {
	X, Y float64
}

type testVelocityComponent struct {
	VX, VY float64
}

func TestCreateEntity(t *testing.T) {
	em := NewEntityManager()
	id1 := em.CreateEntity()
	id2 := em.CreateEntity()

	if id1 == id2 {
		t.Error("Entity IDs should be unique")
	}
	if id1 != 1 {
		t.Errorf("First entity ID should be 1, got %d", id1)
	}
	if id2 != 2 {
		t.Errorf("Second entity ID should be 2, got %d", id2)
	}
}

func TestAddAndGetComponent(t *testing.T) {
	em := NewEntityManager()
	id := em.CreateEntity()

	AddComponent(em, id, &testPositionComponent{X: 100, Y: 200})

	pos, ok := GetComponent[*testPositionComponent](em, id)
	if !ok {
		t.Fatal("Component should be found")
	}
	if pos.X != 100 || pos.Y != 200 {
		t.Errorf("Component data mismatch, expected (100, 200), got (%f, %f)", pos.X, pos.Y)
	}

	// 指针与值是不同的组件类型
	if _, ok := GetComponent[testPositionComponent](em, id); ok {
		t.Error("value type should not match pointer component")
	}
}

func TestAddComponent_Replace(t *testing.T) {
	em := NewEntityManager()
	id := em.CreateEntity()

	AddComponent(em, id, &testPositionComponent{X: 1})
	AddComponent(em, id, &testPositionComponent{X: 2})

	pos, _ := GetComponent[*testPositionComponent](em, id)
	if pos.X != 2 {
		t.Errorf("expected replaced component, got X=%v", pos.X)
	}
}

func TestAddComponent_UnknownEntity(t *testing.T) {
	em := NewEntityManager()
	AddComponent(em, EntityID(42), &testPositionComponent{})
	if _, ok := GetComponent[*testPositionComponent](em, 42); ok {
		t.Error("component should not be attached to unknown entity")
	}
}

func TestGetComponent_DistinctTypes(t *testing.T) {
	em := NewEntityManager()
	id := em.CreateEntity()

	if _, ok := GetComponent[*testPositionComponent](em, id); ok {
		t.Error("Should not have component before adding")
	}
	AddComponent(em, id, &testPositionComponent{X: 1})
	AddComponent(em, id, &testVelocityComponent{VX: 2})

	pos, ok := GetComponent[*testPositionComponent](em, id)
	if !ok || pos.X != 1 {
		t.Errorf("position component lost: %+v, %v", pos, ok)
	}
	vel, ok := GetComponent[*testVelocityComponent](em, id)
	if !ok || vel.VX != 2 {
		t.Errorf("velocity component lost: %+v, %v", vel, ok)
	}
}
